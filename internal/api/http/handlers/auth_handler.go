package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/api/dto"
	"github.com/spec-kit/haf/internal/service"
	apperrors "github.com/spec-kit/haf/pkg/util/errorutil"
)

// Authenticator issues operator tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return apperrors.NewUnauthorized(err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: exp}})
}
