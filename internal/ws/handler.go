package ws

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LocalsAdminID is the fiber locals key the auth middleware stores the
// admin user id under.
const LocalsAdminID = "admin_id"

// Handler upgrades an authenticated request. The optional `topics` query
// parameter (comma separated, e.g. "alert,settings") narrows delivery.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		adminID, ok := c.Locals(LocalsAdminID).(string)
		if !ok || adminID == "" {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:     hub,
			conn:    c,
			adminID: adminID,
			topics:  parseTopics(c.Query("topics")),
			send:    make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func parseTopics(raw string) map[string]bool {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	topics := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics[t] = true
		}
	}
	if len(topics) == 0 {
		return nil
	}
	return topics
}
