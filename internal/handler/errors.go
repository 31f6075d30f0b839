package handler

import (
	"protonshop/internal/service"
	"protonshop/internal/shop"
	"protonshop/internal/storage"
	"protonshop/pkg/jwt"
	"protonshop/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr),
		errors.Is(err, service.ErrInvalidShippingCost),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrImportNotConfirmed),
		errors.Is(err, service.ErrMissingCartID),
		errors.Is(err, shop.ErrEmptyImportPayload),
		errors.Is(err, storage.ErrEmptyUpload):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrDuplicateProduct),
		errors.Is(err, service.ErrEmailTaken):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
