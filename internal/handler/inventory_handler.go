package handler

import (
	"protonshop/internal/model"
	"protonshop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service  service.InventoryService
	importer service.ImportService
}

func NewInventoryHandler(s service.InventoryService, importer service.ImportService) *InventoryHandler {
	return &InventoryHandler{service: s, importer: importer}
}

type importCommitRequest struct {
	Records   []model.Product `json:"records"`
	Confirmed bool            `json:"confirmed"`
}

// GET /api/v1/admin/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// POST /api/v1/admin/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.CreateProduct(c.UserContext(), &product, getUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/admin/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), productID, &product, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DELETE /api/v1/admin/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.service.DeleteProduct(c.UserContext(), productID, getUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GET /api/v1/admin/categories
func (h *InventoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(categories)
}

// Upload stores the multipart "file" field and returns its public URL
// POST /api/v1/admin/uploads
func (h *InventoryHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	u, err := h.service.UploadMedia(c.UserContext(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": u})
}

// ImportPreview normalizes pasted JSON without saving it
// POST /api/v1/admin/products/import/preview
func (h *InventoryHandler) ImportPreview(c *fiber.Ctx) error {
	payload, err := h.importer.Preview(c.Body())
	if err != nil {
		return badRequest(c, err.Error())
	}
	if payload.IsBatch() {
		return c.JSON(fiber.Map{"mode": "batch", "records": payload.Records})
	}
	return c.JSON(fiber.Map{"mode": "single", "record": payload.Single})
}

// ImportCommit saves previewed records once the admin confirms
// POST /api/v1/admin/products/import
func (h *InventoryHandler) ImportCommit(c *fiber.Ctx) error {
	var req importCommitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	summary, err := h.importer.Commit(c.UserContext(), req.Records, req.Confirmed, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}
