package middleware

import (
	"context"
	"strings"

	"protonshop/internal/model"
	"protonshop/internal/service"
	"protonshop/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// Locals keys set for authenticated requests.
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserName  = "user_name"
	LocalUserRole  = "user_role"
)

// SessionResolver resolves a bearer token to its account.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*model.User, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

func setUser(c *fiber.Ctx, user *model.User) {
	c.Locals(LocalUserID, user.ID.String())
	c.Locals(LocalUserEmail, user.Email)
	c.Locals(LocalUserName, user.FullName)
	c.Locals(LocalUserRole, user.Role)
}

// RequireAuth is middleware that validates the session token and sets user info in context
func RequireAuth(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		token, ok := BearerToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		user, err := sessions.Session(c.UserContext(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrSessionExpired):
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (signed in on another device or signed out)"})
		case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrMissingToken):
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}

		setUser(c, user)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// guests through otherwise.
func OptionalAuth(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := BearerToken(c); ok {
			if user, err := sessions.Session(c.UserContext(), token); err == nil {
				setUser(c, user)
			}
		}
		return c.Next()
	}
}

// RequireRole checks the role set by RequireAuth. It panics on an unknown
// role code so a typo fails at route registration.
func RequireRole(role string) fiber.Handler {
	if !model.ValidRole(role) {
		panic("middleware: unknown role " + role)
	}
	return func(c *fiber.Ctx) error {
		current, ok := c.Locals(LocalUserRole).(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}
		if current != role {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + role + "' role",
			})
		}
		return c.Next()
	}
}
