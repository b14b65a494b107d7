package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/relayforge/relayforge/internal/services"
)

var Version = "1.0.0"

type SystemHandler struct {
	registry  *services.Registry
	startedAt time.Time
}

func NewSystemHandler(registry *services.Registry) *SystemHandler {
	return &SystemHandler{registry: registry, startedAt: time.Now()}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"version":         Version,
		"active_sessions": h.registry.Count(),
		"uptime_seconds":  int(time.Since(h.startedAt).Seconds()),
	})
}
