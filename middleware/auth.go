// middleware/auth.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

const userIDLocal = "user_id"

// UserContextMiddleware requires the wallet identity forwarded by the Gateway
// in X-User-ID and attaches it to the request as the caller.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		c.Locals(userIDLocal, userID)

		log.Printf("👤 [USER_CTX] UserID=%s | %s %s", userID, c.Method(), c.Path())
		return c.Next()
	}
}

// CallerID returns the identity attached by UserContextMiddleware, or "".
func CallerID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDLocal).(string)
	return id
}
