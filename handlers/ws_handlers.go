package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests on the websocket route.
func (h *ApplicationHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ProgressSocket opens the per-client progress channel. The connection is
// push-only from the server side; the read loop exists to detect the
// client going away, at which point the channel is unregistered.
func (h *ApplicationHandler) ProgressSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		clientID := conn.Params("clientId")
		if clientID == "" {
			conn.Close()
			return
		}

		h.Progress.Register(clientID, conn)
		defer h.Progress.Unregister(clientID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.Logger.Infof("Progress channel closed for client %s", clientID)
				return
			}
		}
	})
}
