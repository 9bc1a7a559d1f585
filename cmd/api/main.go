package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/api/handlers"
	"github.com/collegegpt/backend/internal/app"
	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/internal/middleware/ratelimit"
	"github.com/collegegpt/backend/internal/middleware/security"
	"github.com/collegegpt/backend/internal/middleware/validation"
	"github.com/collegegpt/backend/pkg/config"
	appLogger "github.com/collegegpt/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting CollegeGPT API Server", zap.String("college", cfg.College.Name))

	metrics.Init()

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		appLogger.Fatal("Failed to build question engine", zap.Error(err))
	}
	defer a.Close()

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
		Logger:            appLogger.GetLogger(),
	})
	defer limiter.Stop()

	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	fiberApp.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.IsDevelopment,
	}))

	queryHandler := handlers.NewQueryHandler(a.Engine, a.Canned)
	topicsHandler := handlers.NewTopicsHandler(a.Resolver)

	api := fiberApp.Group("/api/v1")

	api.Post("/student-gpt",
		limiter.Middleware(),
		validation.Middleware(validation.Config{
			MinQuestionLength: cfg.Validation.MinQuestionLength,
			MaxQuestionLength: cfg.Validation.MaxQuestionLength,
			Logger:            appLogger.GetLogger(),
		}),
		queryHandler.HandleQuestion,
	)
	api.Get("/topics", topicsHandler.ListTopics)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ready",
			"strategies": a.Engine.Strategies(),
		})
	})

	fiberApp.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := fiberApp.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := fiberApp.ShutdownWithTimeout(30 * time.Second); err != nil {
		appLogger.Warn("Server shutdown incomplete", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
