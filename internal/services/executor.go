package services

import (
	"bytes"
	"time"
)

// CommandResult is the outcome of one remote command. Stdout and stderr are
// accumulated independently in arrival order; no ordering holds between the
// two streams.
type CommandResult struct {
	Command  string `json:"command"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}

// Executor runs commands over registered sessions.
type Executor struct {
	registry *Registry
	audit    *Recorder
}

func NewExecutor(registry *Registry, audit *Recorder) *Executor {
	return &Executor{registry: registry, audit: audit}
}

// Execute opens a fresh channel on the session and runs command to
// completion. Concurrent calls against the same session open independent
// channels; the executor imposes no ordering among them.
func (e *Executor) Execute(sessionID, command string) (*CommandResult, error) {
	conn, err := e.registry.Acquire(sessionID)
	if err != nil {
		return nil, err
	}

	exec, err := conn.NewExec()
	if err != nil {
		return nil, &ChannelError{Op: "open exec channel", Err: err}
	}
	e.registry.Track(sessionID, exec)
	defer func() {
		e.registry.Untrack(sessionID, exec)
		exec.Close()
	}()

	start := time.Now()

	var stdout, stderr bytes.Buffer
	exitCode, err := exec.Run(command, &stdout, &stderr)
	if err != nil {
		return nil, &ChannelError{Op: "run command", Err: err}
	}

	e.audit.Command(sessionID, command, exitCode, time.Since(start))

	return &CommandResult{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}
