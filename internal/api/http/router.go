package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/api/http/handlers"
	"github.com/spec-kit/haf/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Templates      *handlers.TemplatesHandler
	Calls          *handlers.CallsHandler
	Logs           *handlers.LogsHandler
	Settings       *handlers.SettingsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireOperator()}

	templates := app.Group("/templates", protected...)
	templates.Get("/", cfg.Templates.List)
	templates.Post("/sort", cfg.Templates.Sort)
	templates.Get("/:callType", cfg.Templates.Get)
	templates.Put("/:callType", cfg.Templates.Upsert)

	calls := app.Group("/calls", protected...)
	calls.Post("/", cfg.Calls.Submit)
	calls.Get("/current", cfg.Calls.Current)

	logs := app.Group("/logs", protected...)
	logs.Get("/last", cfg.Logs.Last)
	logs.Get("/recent", cfg.Logs.Recent)

	settings := app.Group("/settings", protected...)
	settings.Get("/", cfg.Settings.Show)
	settings.Put("/language", cfg.Settings.UpdateLanguage)
	settings.Put("/auto-open", cfg.Settings.UpdateAutoOpen)
	settings.Put("/credentials", cfg.Settings.UpdateCredentials)

	app.Get("/metrics", append(protected, cfg.Metrics.Show)...)
}
