package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/api/dto"
	"github.com/spec-kit/haf/internal/repository"
	apperrors "github.com/spec-kit/haf/pkg/util/errorutil"
)

// TemplatesHandler manages the template dictionary.
type TemplatesHandler struct {
	repo repository.TemplateRepository
}

// NewTemplatesHandler constructs handler.
func NewTemplatesHandler(repo repository.TemplateRepository) *TemplatesHandler {
	return &TemplatesHandler{repo: repo}
}

// List GET /templates.
func (h *TemplatesHandler) List(c *fiber.Ctx) error {
	templates, err := h.repo.Load(c.UserContext())
	if err != nil {
		return err
	}
	keys, err := h.repo.Keys(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TemplateResponse, 0, len(keys))
	for _, key := range keys {
		items = append(items, dto.NewTemplateResponse(key, templates[key]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /templates/:callType.
func (h *TemplatesHandler) Get(c *fiber.Ctx) error {
	callType := c.Params("callType")
	tmpl, err := h.repo.Get(c.UserContext(), callType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTemplateResponse(callType, tmpl)})
}

// Upsert PUT /templates/:callType.
func (h *TemplatesHandler) Upsert(c *fiber.Ctx) error {
	var req dto.TemplateBody
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	callType := c.Params("callType")
	if err := h.repo.Upsert(c.UserContext(), callType, req.Template()); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTemplateResponse(callType, req.Template())})
}

// Sort POST /templates/sort.
func (h *TemplatesHandler) Sort(c *fiber.Ctx) error {
	if err := h.repo.Sort(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
