package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/relayforge/relayforge/internal/config"
	"github.com/relayforge/relayforge/internal/database"
	"github.com/relayforge/relayforge/internal/handlers"
	"github.com/relayforge/relayforge/internal/routes"
	"github.com/relayforge/relayforge/internal/services"
	"github.com/relayforge/relayforge/internal/tools"
)

func main() {
	// JSON structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting Relayforge", "version", handlers.Version)

	// ─── Config ──────────────────────────────────────────────────────────
	cfg := config.Load()

	// ─── Audit database (optional) ──────────────────────────────────────
	var recorder *services.Recorder
	if cfg.DBHost != "" {
		if err := database.Connect(cfg); err != nil {
			slog.Error("Database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("Database migration failed", "error", err)
			os.Exit(1)
		}
		recorder = services.NewRecorder(database.DB)
	} else {
		slog.Warn("DB_HOST not set, audit trail disabled")
	}

	// ─── Session services ───────────────────────────────────────────────
	registry := services.NewRegistry(cfg.SessionTimeout)
	registry.StartReaper(cfg.ReapInterval)

	connector := services.NewConnector(registry, cfg.SSHConnectTimeout, recorder)
	executor := services.NewExecutor(registry, recorder)
	transfer := services.NewTransfer(registry, recorder)
	extractor := services.NewLogExtractor(executor, transfer)
	toolRegistry := tools.NewRegistry(connector, registry, executor, transfer, extractor)

	// ─── Handlers ───────────────────────────────────────────────────────
	authHandler := handlers.NewAuthHandler(cfg)
	sessionHandler := handlers.NewSessionHandler(connector, registry, executor, transfer, extractor)
	terminalHandler := handlers.NewTerminalHandler(registry)
	toolsHandler := handlers.NewToolsHandler(toolRegistry)
	systemHandler := handlers.NewSystemHandler(registry)

	// ─── Fiber App ──────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      "relayforge v" + handlers.Version,
		ServerHeader: "relayforge",
		BodyLimit:    10 * 1024 * 1024, // 10MB for file uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: false,
	}))

	// Request logger
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Path() == "/api/health" {
			return err
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		)
		return err
	})

	// ─── Routes ─────────────────────────────────────────────────────────
	routes.Setup(app, cfg, authHandler, sessionHandler, terminalHandler, toolsHandler, systemHandler)

	// ─── Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down Relayforge...")

		registry.Stop()

		if err := app.Shutdown(); err != nil {
			slog.Error("Fiber shutdown error", "error", err)
		}

		if database.DB != nil {
			if sqlDB, err := database.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
	}()

	// ─── Start ──────────────────────────────────────────────────────────
	listenAddr := ":" + cfg.Port
	slog.Info("Relayforge listening", "addr", listenAddr)

	if err := app.Listen(listenAddr); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
