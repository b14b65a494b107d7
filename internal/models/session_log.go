package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionLog records the lifetime of one remote session for the audit trail.
// It is written best-effort and never read back by the core.
type SessionLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionID string     `gorm:"not null;index" json:"session_id"`
	Host      string     `gorm:"not null" json:"host"`
	Port      int        `gorm:"default:22" json:"port"`
	Username  string     `gorm:"not null" json:"username"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}
