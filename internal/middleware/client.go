package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const ClientIDHeader = "X-Client-ID"

// EnsureClientID tags every request with a client ID taken from the
// X-Client-ID header or the clientId query parameter, minting one when
// neither is present. The ID is echoed back in the response header.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals("clientID").(string); ok && id != "" {
			return c.Next()
		}

		clientID := c.Get(ClientIDHeader)
		if clientID == "" {
			clientID = c.Query("clientId")
		}
		if clientID == "" {
			clientID = uuid.New().String()
		}

		c.Locals("clientID", clientID)
		c.Set(ClientIDHeader, clientID)
		return c.Next()
	}
}

// ClientID returns the ID stored by EnsureClientID, or "".
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals("clientID").(string)
	return id
}
