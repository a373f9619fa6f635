package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/api/dto"
	"github.com/spec-kit/haf/internal/settings"
	apperrors "github.com/spec-kit/haf/pkg/util/errorutil"
)

// SettingsStore reads and updates the operator settings.
type SettingsStore interface {
	SettingsReader
	UpdateLanguage(lang string) (bool, error)
	UpdateAutoOpen(enabled bool) error
	UpdateCredentials(email, password string) error
}

// SettingsHandler exposes the INI settings.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Show GET /settings.
func (h *SettingsHandler) Show(c *fiber.Ctx) error {
	return h.respond(c)
}

// UpdateLanguage PUT /settings/language.
func (h *SettingsHandler) UpdateLanguage(c *fiber.Ctx) error {
	var req dto.LanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ok, err := h.store.UpdateLanguage(req.Language)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidationError("unsupported language", map[string]any{"languages": settings.Languages})
	}
	return h.respond(c)
}

// UpdateAutoOpen PUT /settings/auto-open.
func (h *SettingsHandler) UpdateAutoOpen(c *fiber.Ctx) error {
	var req dto.AutoOpenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.store.UpdateAutoOpen(req.Enabled); err != nil {
		return err
	}
	return h.respond(c)
}

// UpdateCredentials PUT /settings/credentials. Changing the email invalidates
// every issued token.
func (h *SettingsHandler) UpdateCredentials(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Password == "" {
		return apperrors.NewValidationError("password required", nil)
	}
	if err := h.store.UpdateCredentials(strings.TrimSpace(req.Email), req.Password); err != nil {
		return err
	}
	return h.respond(c)
}

func (h *SettingsHandler) respond(c *fiber.Ctx) error {
	cfg, err := h.store.Load()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(cfg)})
}
