package handler

import (
	"protonshop/internal/model"
	"protonshop/internal/service"
	"protonshop/internal/shop"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders service.OrderService
	cart   service.CartService
}

func NewOrderHandler(orders service.OrderService, cart service.CartService) *OrderHandler {
	return &OrderHandler{orders: orders, cart: cart}
}

type statusRequest struct {
	Status       model.OrderStatus `json:"status"`
	ShippingCost any               `json:"shipping_cost"`
}

type shippingRequest struct {
	ShippingCost any `json:"shipping_cost"`
}

type batchStatusRequest struct {
	IDs    []uuid.UUID       `json:"ids"`
	Status model.OrderStatus `json:"status"`
}

// Checkout turns the X-Cart-ID cart into an order. A bearer token, when
// present, links the order to the account.
// POST /api/v1/orders
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if userID, ok := currentUser(c); ok {
		req.UserID = &userID
	}

	var order *model.Order
	err := h.cart.WithCart(c.UserContext(), c.Get(CartHeader), func(ledger *shop.Ledger) error {
		placed, err := h.orders.PlaceOrder(c.UserContext(), req, ledger)
		order = placed
		return err
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GET /api/v1/me/orders
func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	orders, err := h.orders.ListUserOrders(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/admin/orders
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListOrders(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// PUT /api/v1/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.orders.TransitionStatus(c.UserContext(), id, req.Status, req.ShippingCost)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

// PUT /api/v1/admin/orders/:id/shipping
func (h *OrderHandler) UpdateShipping(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	var req shippingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.orders.SetShippingCost(c.UserContext(), id, req.ShippingCost)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Shipping updated", "data": order})
}

// BatchStatus answers 200 with a summary even when some orders fail.
// POST /api/v1/admin/orders/status
func (h *OrderHandler) BatchStatus(c *fiber.Ctx) error {
	var req batchStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if len(req.IDs) == 0 {
		return badRequest(c, "ids is required")
	}

	result, err := h.orders.BatchTransitionStatus(c.UserContext(), req.IDs, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// DELETE /api/v1/admin/orders/:id
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	if err := h.orders.DeleteOrder(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}
