package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Role names what a token may do. HAF has a single operator role.
type Role string

const RoleOperator Role = "OPERATOR"

// RequireOperator ensures the caller holds an operator token.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Role != RoleOperator {
			return fiber.NewError(http.StatusForbidden, "operator required")
		}
		return c.Next()
	}
}
