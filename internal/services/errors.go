package services

import (
	"errors"
	"fmt"
)

// ErrAuthConfig is returned by Connect when neither a password nor a private
// key is supplied. No network connection is attempted in that case.
var ErrAuthConfig = errors.New("either a password or a private key is required")

// ErrSessionNotFound is returned for session ids that are unknown or already
// reaped. Callers must treat it as terminal for the operation.
var ErrSessionNotFound = errors.New("session not found")

// ConnectionError reports a failed handshake or authentication.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ChannelError reports a transport failure mid-operation.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
