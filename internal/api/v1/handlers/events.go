package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskmanager/internal/middleware"
	myws "taskmanager/internal/websocket"
	"taskmanager/pkg/logger"
)

// RequireUpgrade rejects plain HTTP requests to websocket routes with 426.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// TaskEvents streams task events to the connection until it closes.
func TaskEvents(hub *myws.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := middleware.PrincipalFrom(c)
		return websocket.New(func(conn *websocket.Conn) {
			client := myws.NewClient(conn)
			if !hub.Register(client) {
				return
			}
			defer hub.Unregister(client)
			logger.AuditLogger.Info("Task event subscriber connected", zap.String("user", principal.Username))

			// inbound messages are ignored; a read error means the peer left
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		})(c)
	}
}
