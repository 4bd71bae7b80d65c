package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/eduleaf/gradeflow-api/internal/config"
	"github.com/eduleaf/gradeflow-api/internal/dto"
	"github.com/eduleaf/gradeflow-api/internal/rubric"
	"github.com/eduleaf/gradeflow-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

// SystemStatus returns a handler reporting grading capabilities and limits.
func SystemStatus(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := dto.SystemStatusResponse{
			SystemHealthy: true,
			AIAvailable:   cfg.AIAvailable(),
			Model:         cfg.OpenAIModel,
			DefaultRubric: rubric.DefaultItems,
			MaxFileSizeMB: float64(cfg.MaxUploadBytes) / (1024 * 1024),
			Version:       cfg.AppVersion,
		}

		return utils.SendSuccess(c, "system status", payload)
	}
}
