package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/persistence"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/settings"
)

// SettingsReader loads the operator settings.
type SettingsReader interface {
	Load() (settings.Settings, error)
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	settings    SettingsReader
	templates   repository.TemplateRepository
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance. Postgres and Redis are
// only checked when configured.
func NewHealthHandler(serviceName, version string, settings SettingsReader, templates repository.TemplateRepository, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		settings:    settings,
		templates:   templates,
		postgres:    postgres,
		redis:       redis,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the stores.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	check := func(name string, err error) {
		if err != nil {
			depStatus[name] = err.Error()
			ready = false
			return
		}
		depStatus[name] = "ok"
	}

	_, err := h.settings.Load()
	check("settings", err)
	_, err = h.templates.Load(ctx)
	check("templates", err)
	if h.postgres.Enabled() {
		check("postgres", h.postgres.Ping(ctx))
	}
	if h.redis.Enabled() {
		check("redis", h.redis.Ping(ctx))
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
