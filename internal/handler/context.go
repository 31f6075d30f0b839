package handler

import (
	"protonshop/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CartHeader carries the shopper's cart id.
const CartHeader = "X-Cart-ID"

// getUserID returns the authenticated user id, or "system" outside a session.
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok || userID == "" {
		return "system"
	}
	return userID
}

// currentUser returns the parsed user id when the request carries a session.
func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	raw, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
