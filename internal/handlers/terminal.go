package handlers

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/relayforge/relayforge/internal/remote"
	"github.com/relayforge/relayforge/internal/services"
)

// TerminalHandler bridges a WebSocket to an interactive PTY shell on an
// existing session.
type TerminalHandler struct {
	registry *services.Registry
}

func NewTerminalHandler(registry *services.Registry) *TerminalHandler {
	return &TerminalHandler{registry: registry}
}

// UpgradeCheck is middleware that checks if the request is a websocket upgrade
func (h *TerminalHandler) UpgradeCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *TerminalHandler) HandleTerminal() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		sessionID := c.Params("id")

		conn, err := h.registry.Acquire(sessionID)
		if err != nil {
			c.WriteMessage(websocket.TextMessage, []byte("Error: "+err.Error()))
			return
		}

		interactive, ok := conn.(remote.Interactive)
		if !ok {
			c.WriteMessage(websocket.TextMessage, []byte("Error: session does not support interactive shells"))
			return
		}

		term, err := interactive.Shell(24, 80)
		if err != nil {
			c.WriteMessage(websocket.TextMessage, []byte("Error: failed to start shell: "+err.Error()))
			return
		}
		h.registry.Track(sessionID, term)
		defer func() {
			h.registry.Untrack(sessionID, term)
			term.Close()
		}()

		slog.Info("Terminal session started", "session", sessionID)

		done := make(chan struct{})

		pump := func(r io.Reader, closeDone bool) {
			buf := make([]byte, 4096)
			for {
				n, err := r.Read(buf)
				if n > 0 {
					c.WriteMessage(websocket.TextMessage, buf[:n])
				}
				if err != nil {
					if closeDone {
						close(done)
					}
					return
				}
			}
		}
		go pump(term.Stdout(), true)
		go pump(term.Stderr(), false)

		// WebSocket → stdin
		go func() {
			for {
				msgType, msg, err := c.ReadMessage()
				if err != nil {
					term.Close()
					return
				}
				h.registry.Touch(sessionID)

				if msgType == websocket.TextMessage {
					var ctrl struct {
						Type string `json:"type"`
						Cols int    `json:"cols"`
						Rows int    `json:"rows"`
					}
					if json.Unmarshal(msg, &ctrl) == nil && ctrl.Type == "resize" {
						term.Resize(ctrl.Rows, ctrl.Cols)
						continue
					}
				}
				term.Write(msg)
			}
		}()

		<-done
		slog.Info("Terminal session ended", "session", sessionID)
	})
}
