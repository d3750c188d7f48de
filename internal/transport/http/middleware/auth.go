package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/csvflow/backend/internal/core/ports"
)

const userIDKey = "user_id"

// JWTAuth validates the Bearer access token and stores the caller's
// user id on the request context.
func JWTAuth(auth ports.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication credentials were not provided",
			})
		}

		userID, err := auth.VerifyAccess(header[len(prefix):])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(userIDKey).(uint)
	return id
}
