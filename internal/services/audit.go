package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/relayforge/relayforge/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder persists session, command, and transfer history. All writes are
// best-effort: a database error is logged and never surfaced to the
// operation that triggered it. A nil Recorder (or one with no database)
// records nothing, which is how the server runs without DB_HOST set.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) enabled() bool {
	return r != nil && r.db != nil
}

func (r *Recorder) Connected(sessionID, host string, port int, username string) {
	if !r.enabled() {
		return
	}
	log := models.SessionLog{
		SessionID: sessionID,
		Host:      host,
		Port:      port,
		Username:  username,
		StartedAt: time.Now(),
	}
	if err := r.db.Create(&log).Error; err != nil {
		slog.Warn("Failed to record session start", "session", sessionID, "error", err)
	}
	r.event(sessionID, "connect", host, map[string]any{"port": port, "username": username})
}

func (r *Recorder) Disconnected(sessionID string) {
	if !r.enabled() {
		return
	}
	now := time.Now()
	if err := r.db.Model(&models.SessionLog{}).
		Where("session_id = ? AND ended_at IS NULL", sessionID).
		Update("ended_at", now).Error; err != nil {
		slog.Warn("Failed to record session end", "session", sessionID, "error", err)
	}
	r.event(sessionID, "disconnect", "", nil)
}

func (r *Recorder) Command(sessionID, command string, exitCode int, duration time.Duration) {
	if !r.enabled() {
		return
	}
	history := models.CommandHistory{
		SessionID:  sessionID,
		Command:    command,
		ExitCode:   exitCode,
		ExecutedAt: time.Now(),
		DurationMs: int(duration.Milliseconds()),
	}
	if err := r.db.Create(&history).Error; err != nil {
		slog.Warn("Failed to record command", "session", sessionID, "error", err)
	}
}

func (r *Recorder) Transfer(sessionID, action, remotePath string, bytes int) {
	if !r.enabled() {
		return
	}
	r.event(sessionID, action, remotePath, map[string]any{"bytes": bytes})
}

func (r *Recorder) event(sessionID, action, target string, details map[string]any) {
	var payload datatypes.JSON
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			payload = datatypes.JSON(b)
		}
	}
	log := models.AuditLog{
		SessionID: sessionID,
		Action:    action,
		Target:    target,
		Details:   payload,
	}
	if err := r.db.Create(&log).Error; err != nil {
		slog.Warn("Failed to record audit event", "action", action, "error", err)
	}
}
