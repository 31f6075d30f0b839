package handler

import (
	"protonshop/internal/middleware"
	"protonshop/internal/model"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth      *AuthHandler
	Store     *StoreHandler
	Cart      *CartHandler
	Orders    *OrderHandler
	Profiles  *ProfileHandler
	Inventory *InventoryHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the /api/v1 surface.
func RegisterRoutes(app *fiber.App, h Handlers, sessions middleware.SessionResolver) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Get("/store", h.Store.GetStore)
	api.Get("/products", h.Store.GetProducts)
	api.Get("/products/:id", h.Store.GetProduct)
	api.Post("/visits", h.Store.RecordVisit)

	cart := api.Group("/cart")
	cart.Get("", h.Cart.GetCart)
	cart.Delete("", h.Cart.ClearCart)
	cart.Post("/items", h.Cart.AddItem)
	cart.Patch("/items/:id", h.Cart.UpdateItem)
	cart.Delete("/items/:id", h.Cart.RemoveItem)

	api.Post("/orders", middleware.OptionalAuth(sessions), h.Orders.Checkout)

	auth := api.Group("/auth")
	auth.Post("/signup", h.Auth.SignUp)
	auth.Post("/signin", h.Auth.SignIn)
	auth.Get("/session", h.Auth.Session)
	auth.Post("/signout", middleware.RequireAuth(sessions), h.Auth.SignOut)

	// ============ PROTECTED ROUTES ============
	me := api.Group("/me", middleware.RequireAuth(sessions))
	me.Get("/orders", h.Orders.MyOrders)
	me.Get("/profile", h.Profiles.GetProfile)
	me.Put("/profile", h.Profiles.UpdateProfile)
	me.Get("/checkout-prefill", h.Profiles.CheckoutPrefill)

	admin := api.Group("/admin", middleware.RequireAuth(sessions), middleware.RequireRole(model.RoleAdmin))
	admin.Get("/dashboard", h.Dashboard.GetDashboard)
	admin.Post("/dashboard/refresh", h.Dashboard.Refresh)

	admin.Get("/orders", h.Orders.GetOrders)
	admin.Post("/orders/status", h.Orders.BatchStatus)
	admin.Put("/orders/:id/status", h.Orders.UpdateStatus)
	admin.Put("/orders/:id/shipping", h.Orders.UpdateShipping)
	admin.Delete("/orders/:id", h.Orders.DeleteOrder)

	admin.Get("/products", h.Inventory.GetProducts)
	admin.Post("/products", h.Inventory.CreateProduct)
	admin.Post("/products/import/preview", h.Inventory.ImportPreview)
	admin.Post("/products/import", h.Inventory.ImportCommit)
	admin.Put("/products/:id", h.Inventory.UpdateProduct)
	admin.Delete("/products/:id", h.Inventory.DeleteProduct)
	admin.Get("/categories", h.Inventory.GetCategories)
	admin.Post("/uploads", h.Inventory.Upload)
}
