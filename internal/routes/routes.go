package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/relayforge/relayforge/internal/config"
	"github.com/relayforge/relayforge/internal/handlers"
	"github.com/relayforge/relayforge/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	terminalHandler *handlers.TerminalHandler,
	toolsHandler *handlers.ToolsHandler,
	systemHandler *handlers.SystemHandler,
) {
	// ─── Public ──────────────────────────────────────────────────────────
	app.Get("/api/health", systemHandler.Health)

	// ─── Auth ────────────────────────────────────────────────────────────
	app.Post("/api/auth/login", authHandler.Login)
	app.Post("/api/auth/refresh", authHandler.Refresh)

	// ─── Protected routes ────────────────────────────────────────────────
	api := app.Group("/api", middleware.JWTProtected(cfg.JWTSecret))

	api.Get("/auth/me", authHandler.Me)

	// Sessions
	api.Get("/sessions", sessionHandler.ListSessions)
	api.Post("/sessions", sessionHandler.Connect)
	api.Delete("/sessions/:id", sessionHandler.Disconnect)

	// Operations over a session
	api.Post("/sessions/:id/exec", sessionHandler.ExecCommand)
	api.Post("/sessions/:id/upload", sessionHandler.UploadFile)
	api.Post("/sessions/:id/download", sessionHandler.DownloadFile)
	api.Post("/sessions/:id/logs/line-range", sessionHandler.ExtractByLineRange)
	api.Post("/sessions/:id/logs/time-range", sessionHandler.ExtractByTimeRange)

	// Terminal (WebSocket)
	api.Use("/sessions/:id/terminal", terminalHandler.UpgradeCheck())
	api.Get("/sessions/:id/terminal", terminalHandler.HandleTerminal())

	// Tool dispatch
	api.Get("/tools", toolsHandler.ListTools)
	api.Post("/tools/call", toolsHandler.CallTool)
}
