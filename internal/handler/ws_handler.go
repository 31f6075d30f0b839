package handler

import (
	"protonshop/internal/middleware"
	"protonshop/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WSUpgrade rejects plain HTTP on the websocket route. The session token may
// come as ?token= because browsers cannot set headers on the upgrade.
func WSUpgrade(sessions middleware.SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		token := c.Query("token")
		if t, ok := middleware.BearerToken(c); ok {
			token = t
		}
		if token != "" {
			if user, err := sessions.Session(c.UserContext(), token); err == nil {
				c.Locals(middleware.LocalUserID, user.ID.String())
			}
		}
		return c.Next()
	}
}

// WSHandler keeps the connection registered with the hub until the client
// goes away. Incoming messages are ignored.
func WSHandler(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals(middleware.LocalUserID).(string)
		if !hub.Join(&ws.Client{Conn: c, UserID: userID}) {
			return
		}
		defer hub.Leave(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
