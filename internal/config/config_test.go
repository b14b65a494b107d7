package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8098", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, time.Minute, cfg.ReapInterval)
	assert.Equal(t, 10*time.Second, cfg.SSHConnectTimeout)
	assert.Empty(t, cfg.DBHost)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TIMEOUT", "300")
	t.Setenv("REAP_INTERVAL", "15")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 15*time.Second, cfg.ReapInterval)
}
