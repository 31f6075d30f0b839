package handler

import (
	"protonshop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StoreHandler serves the public storefront.
type StoreHandler struct {
	catalog service.CatalogService
}

func NewStoreHandler(catalog service.CatalogService) *StoreHandler {
	return &StoreHandler{catalog: catalog}
}

// GetStore returns products and categories in one call
// GET /api/v1/store?category=&q=
func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	data, err := h.catalog.StoreData(c.UserContext(), c.Query("category"), c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(data)
}

// GET /api/v1/products?category=&q=
func (h *StoreHandler) GetProducts(c *fiber.Ctx) error {
	data, err := h.catalog.StoreData(c.UserContext(), c.Query("category"), c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(data.Products)
}

// GET /api/v1/products/:id
func (h *StoreHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	p, err := h.catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// RecordVisit always answers 204; counting is best effort.
// POST /api/v1/visits
func (h *StoreHandler) RecordVisit(c *fiber.Ctx) error {
	h.catalog.RecordVisit(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}
