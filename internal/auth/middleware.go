package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/settings"
	apperrors "github.com/spec-kit/haf/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Email   string
	Role    Role
	TokenID string
}

// OperatorSource returns the settings naming the current operator.
type OperatorSource interface {
	Load() (settings.Settings, error)
}

// AuthMiddleware validates bearer tokens against the current operator.
type AuthMiddleware struct {
	tokens   *TokenManager
	operator OperatorSource
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, operator OperatorSource) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, operator: operator}
}

// Handle enforces authentication for protected routes. Tokens issued to an
// email that is no longer the configured one are rejected.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	cfg, err := m.operator.Load()
	if err != nil {
		return apperrors.MapError(err)
	}
	if !strings.EqualFold(claims.Subject, cfg.Email) {
		return apperrors.NewUnauthorized("operator changed")
	}

	c.Locals(principalKey, &Principal{Email: claims.Subject, Role: claims.Role, TokenID: claims.ID})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
