package middleware

import (
	"slices"

	common_models "go-expense/internal/common/models"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireRole gates a route to the given company roles
func RequireRole(roles ...common_models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if !slices.Contains(roles, claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied. Insufficient permissions.",
			})
		}

		return c.Next()
	}
}
