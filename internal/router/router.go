package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eduleaf/gradeflow-api/internal/config"
	"github.com/eduleaf/gradeflow-api/internal/handler"
	"github.com/eduleaf/gradeflow-api/internal/middleware"
	"github.com/eduleaf/gradeflow-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradeHandler  *handler.GradeHandler
	BatchHandler  *handler.BatchHandler
	ReviewHandler *handler.ReviewHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.ScrapeHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/system-status", handler.SystemStatus(cfg))

	// grading is model-backed and expensive, so those routes are rate limited
	gradingLimiter := middleware.RateLimit("grading", cfg.RateLimitMax, cfg.RateLimitWindow)

	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(api.Group("", gradingLimiter))
	}
	if deps.BatchHandler != nil {
		deps.BatchHandler.Register(api.Group("", gradingLimiter))
	}
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(api)
	}
}
