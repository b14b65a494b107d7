package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/relayforge/relayforge/internal/remote"
	"github.com/relayforge/relayforge/internal/services"
)

// SessionHandler exposes the session lifecycle and the operations that run
// over sessions. Field names on this API are part of the external contract
// and must not change (sessionId, exitCode, remotePath, lineCount, ...).
type SessionHandler struct {
	connector *services.Connector
	registry  *services.Registry
	executor  *services.Executor
	transfer  *services.Transfer
	extractor *services.LogExtractor
}

func NewSessionHandler(
	connector *services.Connector,
	registry *services.Registry,
	executor *services.Executor,
	transfer *services.Transfer,
	extractor *services.LogExtractor,
) *SessionHandler {
	return &SessionHandler{
		connector: connector,
		registry:  registry,
		executor:  executor,
		transfer:  transfer,
		extractor: extractor,
	}
}

type connectRequest struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	PrivateKey string `json:"privateKey"`
	Passphrase string `json:"passphrase"`
	Timeout    int    `json:"timeout"` // milliseconds
}

func (h *SessionHandler) Connect(c *fiber.Ctx) error {
	var req connectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.Host == "" || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "host and username are required",
		})
	}

	id, err := h.connector.Connect(remote.Config{
		Host:       req.Host,
		Port:       req.Port,
		User:       req.Username,
		Password:   req.Password,
		PrivateKey: req.PrivateKey,
		Passphrase: req.Passphrase,
		Timeout:    time.Duration(req.Timeout) * time.Millisecond,
	})
	if err != nil {
		status := fiber.StatusBadGateway
		if errors.Is(err, services.ErrAuthConfig) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"sessionId": id,
	})
}

func (h *SessionHandler) Disconnect(c *fiber.Ctx) error {
	removed := h.connector.Disconnect(c.Params("id"))
	return c.JSON(fiber.Map{"success": removed})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	sessions := h.registry.List()
	return c.JSON(fiber.Map{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *SessionHandler) ExecCommand(c *fiber.Ctx) error {
	var req struct {
		Command string `json:"command"`
	}
	if err := c.BodyParser(&req); err != nil || req.Command == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Command is required",
		})
	}

	result, err := h.executor.Execute(c.Params("id"), req.Command)
	if err != nil {
		return operationError(c, err)
	}
	return c.JSON(result)
}

func (h *SessionHandler) UploadFile(c *fiber.Ctx) error {
	var req struct {
		Content    string `json:"content"`
		RemotePath string `json:"remotePath"`
	}
	if err := c.BodyParser(&req); err != nil || req.RemotePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "remotePath is required",
		})
	}

	if err := h.transfer.Upload(c.Params("id"), req.Content, req.RemotePath); err != nil {
		return operationError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"remotePath": req.RemotePath,
	})
}

func (h *SessionHandler) DownloadFile(c *fiber.Ctx) error {
	var req struct {
		RemotePath string `json:"remotePath"`
		Encoding   string `json:"encoding"`
	}
	if err := c.BodyParser(&req); err != nil || req.RemotePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "remotePath is required",
		})
	}

	content, err := h.transfer.Download(c.Params("id"), req.RemotePath, req.Encoding)
	if err != nil {
		return operationError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"content": content,
	})
}

func (h *SessionHandler) ExtractByLineRange(c *fiber.Ctx) error {
	var req struct {
		FilePath  string `json:"filePath"`
		StartLine int    `json:"startLine"`
		EndLine   int    `json:"endLine"`
	}
	if err := c.BodyParser(&req); err != nil || req.FilePath == "" || req.StartLine < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "filePath and startLine >= 1 are required",
		})
	}

	result, err := h.extractor.ExtractByLineRange(c.Params("id"), req.FilePath, req.StartLine, req.EndLine)
	if err != nil {
		return operationError(c, err)
	}
	return c.JSON(result)
}

func (h *SessionHandler) ExtractByTimeRange(c *fiber.Ctx) error {
	var req struct {
		FilePath     string `json:"filePath"`
		TargetTime   string `json:"targetTime"`
		TimePattern  string `json:"timePattern"`
		MinutesRange int    `json:"minutesRange"`
	}
	if err := c.BodyParser(&req); err != nil || req.FilePath == "" || req.TargetTime == "" || req.TimePattern == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "filePath, targetTime and timePattern are required",
		})
	}
	if req.MinutesRange <= 0 {
		req.MinutesRange = 5
	}

	result, err := h.extractor.ExtractByTimeRange(c.Params("id"), req.FilePath, req.TargetTime, req.TimePattern, req.MinutesRange)
	if err != nil {
		return operationError(c, err)
	}
	return c.JSON(result)
}

// operationError maps service errors onto HTTP statuses with the standard
// error envelope.
func operationError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrAuthConfig):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
