package services

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/relayforge/relayforge/internal/remote"
)

// session is one live authenticated connection plus its bookkeeping. The
// struct never leaves the registry; callers hold only the opaque id.
type session struct {
	id           string
	conn         remote.Conn
	host         string
	port         int
	username     string
	connectedAt  time.Time
	lastActivity time.Time
	channels     map[io.Closer]struct{}
}

// SessionInfo is the externally visible view of a session.
type SessionInfo struct {
	ID           string    `json:"sessionId"`
	Host         string    `json:"host"`
	Port         int       `json:"port"`
	Username     string    `json:"username"`
	ConnectedAt  time.Time `json:"connectedAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// Registry owns the session table. A session exists in the table exactly as
// long as its connection has not been closed; Remove is the only path that
// closes a connection.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	timeout  time.Duration
	stop     chan struct{}
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		timeout:  timeout,
		stop:     make(chan struct{}),
	}
}

// Add registers a freshly authenticated connection and returns its new id.
// Registration counts as the session's first activity.
func (r *Registry) Add(conn remote.Conn, host string, port int, username string) string {
	now := time.Now()
	s := &session{
		id:           uuid.NewString(),
		conn:         conn,
		host:         host,
		port:         port,
		username:     username,
		connectedAt:  now,
		lastActivity: now,
		channels:     make(map[io.Closer]struct{}),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return s.id
}

// Acquire touches the session's activity timestamp and returns its
// connection. The session may still be reaped while the caller uses the
// connection; the resulting channel failure is terminal for that operation.
func (r *Registry) Acquire(id string) (remote.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.lastActivity = time.Now()
	return s.conn, nil
}

// Touch updates the session's activity timestamp.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.lastActivity = time.Now()
	}
	r.mu.Unlock()
}

// Track remembers an open channel for best-effort cleanup on disconnect.
func (r *Registry) Track(id string, ch io.Closer) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.channels[ch] = struct{}{}
	}
	r.mu.Unlock()
}

func (r *Registry) Untrack(id string, ch io.Closer) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		delete(s.channels, ch)
	}
	r.mu.Unlock()
}

// Remove disconnects the session. It reports whether a session existed, so a
// second call for the same id returns false.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	for ch := range s.channels {
		ch.Close()
	}
	if err := s.conn.Close(); err != nil {
		slog.Debug("Error closing connection", "session", id, "error", err)
	}
	slog.Info("Session disconnected", "session", id, "host", s.host)
	return true
}

// Get returns the session's info view.
func (r *Registry) Get(id string) (SessionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return SessionInfo{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s.info(), nil
}

func (r *Registry) List() []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.info())
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (s *session) info() SessionInfo {
	return SessionInfo{
		ID:           s.id,
		Host:         s.host,
		Port:         s.port,
		Username:     s.username,
		ConnectedAt:  s.connectedAt,
		LastActivity: s.lastActivity,
	}
}

// StartReaper launches the background sweep that disconnects idle sessions.
func (r *Registry) StartReaper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Reap()
			case <-r.stop:
				return
			}
		}
	}()
	slog.Info("Session reaper started", "interval", interval, "timeout", r.timeout)
}

// Reap disconnects every session idle past the configured timeout and
// returns how many were removed.
func (r *Registry) Reap() int {
	r.mu.Lock()
	var idle []string
	for id, s := range r.sessions {
		if time.Since(s.lastActivity) > r.timeout {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	for _, id := range idle {
		slog.Debug("Reaping idle session", "session", id)
		r.Remove(id)
	}
	return len(idle)
}

// Stop halts the reaper and disconnects every remaining session.
func (r *Registry) Stop() {
	close(r.stop)

	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Remove(id)
	}
	slog.Info("All sessions closed")
}
