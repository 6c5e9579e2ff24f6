// middleware/gateway.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware admits only requests carrying the gateway's service
// token, sent as "Bearer <token>" or bare.
func GatewayAuthMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		log.Fatal("❌ [GATEWAY_AUTH] GAME_SERVICE_TOKEN is empty; idle-miner cannot verify gateway requests")
	}

	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		switch {
		case token == "":
			log.Printf("🚫 [GATEWAY_AUTH] %s %s without service token", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		case token != expectedToken:
			log.Printf("🚫 [GATEWAY_AUTH] %s %s with unknown service token", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}
		return c.Next()
	}
}
