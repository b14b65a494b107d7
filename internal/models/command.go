package models

import (
	"time"

	"github.com/google/uuid"
)

type CommandHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionID  string    `gorm:"not null;index" json:"session_id"`
	Command    string    `gorm:"not null" json:"command"`
	ExitCode   int       `json:"exit_code"`
	ExecutedAt time.Time `gorm:"not null" json:"executed_at"`
	DurationMs int       `json:"duration_ms"`
}
