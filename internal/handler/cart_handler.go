package handler

import (
	"protonshop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CartHandler struct {
	cart service.CartService
}

func NewCartHandler(cart service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type updateItemRequest struct {
	Delta int `json:"delta"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	view, err := h.cart.View(c.UserContext(), c.Get(CartHeader))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if req.ProductID == uuid.Nil {
		return badRequest(c, "product_id is required")
	}
	view, err := h.cart.Add(c.UserContext(), c.Get(CartHeader), req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// PATCH /api/v1/cart/items/:id
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	view, err := h.cart.UpdateQuantity(c.UserContext(), c.Get(CartHeader), id, req.Delta)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// DELETE /api/v1/cart/items/:id
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	view, err := h.cart.Remove(c.UserContext(), c.Get(CartHeader), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.cart.Clear(c.UserContext(), c.Get(CartHeader)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
