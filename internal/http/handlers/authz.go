package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "diwholesale/internal/log"
)

// AdminKeyHeader carries the shared admin key on catalog writes.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdmin compares the admin key header with a bcrypt hash. With no hash
// configured every write is refused.
func RequireAdmin(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(AdminKeyHeader)
		if key == "" {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "missing key"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "admin key required"})
		}
		if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "bad key"})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}
		return c.Next()
	}
}
