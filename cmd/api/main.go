package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/eduleaf/gradeflow-api/internal/config"
	"github.com/eduleaf/gradeflow-api/internal/database"
	"github.com/eduleaf/gradeflow-api/internal/handler"
	"github.com/eduleaf/gradeflow-api/internal/middleware"
	"github.com/eduleaf/gradeflow-api/internal/report"
	"github.com/eduleaf/gradeflow-api/internal/router"
	"github.com/eduleaf/gradeflow-api/internal/service"
	"github.com/eduleaf/gradeflow-api/internal/store"
	"github.com/eduleaf/gradeflow-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var grader ai.Grader
	if cfg.AIAvailable() {
		openAIGrader, err := ai.NewOpenAIGrader(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			RubricModel: cfg.OpenAIRubricModel,
			MaxTokens:   cfg.OpenAIMaxTokens,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai grader: %v", err)
		}
		grader = openAIGrader
	} else {
		logger.Warn().Msg("no openai api key configured, grading endpoints will be unavailable")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	snapshots := store.NewSnapshotStore(redisClient, cfg.SnapshotTTL, logger)
	reports := report.NewWriter(cfg.ResultsDir, logger)

	gradeService := service.NewGradeService(grader, snapshots, validate, logger)
	batchService := service.NewBatchService(grader, snapshots, validate, cfg.MaxConcurrentGrading, cfg.PassThreshold, logger)
	reviewService := service.NewReviewService(snapshots, reports, validate, cfg.PassThreshold, logger)

	gradeHandler := handler.NewGradeHandler(gradeService, cfg.MaxUploadBytes, logger)
	batchHandler := handler.NewBatchHandler(batchService, cfg.MaxUploadBytes, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxUploadBytes) * 4,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradeHandler:  gradeHandler,
		BatchHandler:  batchHandler,
		ReviewHandler: reviewHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
