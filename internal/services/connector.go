package services

import (
	"fmt"
	"time"

	"github.com/relayforge/relayforge/internal/remote"
)

// Connector authenticates new sessions and registers them.
type Connector struct {
	registry *Registry
	timeout  time.Duration
	audit    *Recorder

	dial func(remote.Config) (remote.Conn, error)
}

func NewConnector(registry *Registry, timeout time.Duration, audit *Recorder) *Connector {
	return &Connector{
		registry: registry,
		timeout:  timeout,
		audit:    audit,
		dial:     remote.DialSSH,
	}
}

// Connect validates credentials, dials the host, and returns the new session
// id. Credential validation happens before any network I/O; a failed dial
// leaves neither a registry entry nor an open socket behind.
func (c *Connector) Connect(cfg remote.Config) (string, error) {
	if cfg.Password == "" && cfg.PrivateKey == "" {
		return "", ErrAuthConfig
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = c.timeout
	}

	conn, err := c.dial(cfg)
	if err != nil {
		return "", &ConnectionError{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Err: err}
	}

	id := c.registry.Add(conn, cfg.Host, cfg.Port, cfg.User)
	c.audit.Connected(id, cfg.Host, cfg.Port, cfg.User)
	return id, nil
}

// Disconnect removes and closes the session. It reports whether a session
// existed, making a second call for the same id return false.
func (c *Connector) Disconnect(id string) bool {
	removed := c.registry.Remove(id)
	if removed {
		c.audit.Disconnected(id)
	}
	return removed
}
