package handler

import (
	"protonshop/internal/model"
	"protonshop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles service.ProfileService
}

func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/v1/me/profile
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	p, err := h.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// PUT /api/v1/me/profile
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	var p model.Profile
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	p.UserID = userID

	saved, err := h.profiles.Upsert(c.UserContext(), &p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(saved)
}

// GET /api/v1/me/checkout-prefill
func (h *ProfileHandler) CheckoutPrefill(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	req, err := h.profiles.CheckoutPrefill(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(req)
}
