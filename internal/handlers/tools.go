package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/relayforge/relayforge/internal/tools"
)

type ToolsHandler struct {
	registry *tools.Registry
}

func NewToolsHandler(registry *tools.Registry) *ToolsHandler {
	return &ToolsHandler{registry: registry}
}

func (h *ToolsHandler) ListTools(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tools": h.registry.Definitions()})
}

func (h *ToolsHandler) CallTool(c *fiber.Ctx) error {
	var req struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "name is required",
		})
	}
	if len(req.Arguments) == 0 {
		req.Arguments = json.RawMessage("{}")
	}

	result, err := h.registry.Call(req.Name, req.Arguments)
	if err != nil {
		return operationError(c, err)
	}
	return c.JSON(fiber.Map{"result": result})
}
