// Package remote defines the connection capability the session layer runs on:
// one authenticated connection to a host, execution channels multiplexed over
// it, and byte streams for remote paths. The production implementation speaks
// SSH/SFTP; tests substitute in-memory fakes.
package remote

import (
	"io"
	"time"
)

// Config carries the parameters required to open a connection.
type Config struct {
	Host string
	Port int // 0 means 22
	User string

	// Exactly one of Password or PrivateKey must be set.
	Password   string
	PrivateKey string // PEM
	Passphrase string // optional, for encrypted keys

	Timeout time.Duration // handshake timeout, 0 means the caller's default
}

// Conn is one authenticated connection to a remote host.
// Multiple channels and streams may be open on it concurrently.
type Conn interface {
	// NewExec opens a fresh execution channel.
	NewExec() (Exec, error)

	// OpenRead opens a byte stream reading the remote path.
	OpenRead(path string) (io.ReadCloser, error)

	// OpenWrite opens a byte stream writing (create/truncate) the remote path.
	OpenWrite(path string) (io.WriteCloser, error)

	// Close tears the connection down, failing any open channels.
	Close() error
}

// Exec is a single-use execution channel.
type Exec interface {
	// Run executes command, streaming output into stdout and stderr as it
	// arrives, and returns once the channel has fully closed. The returned
	// code is the remote exit status; a remote that terminates the channel
	// without reporting one counts as 0. A non-nil error means the channel
	// failed mid-flight and the output writers may hold partial data.
	Run(command string, stdout, stderr io.Writer) (int, error)

	io.Closer
}

// Interactive is implemented by connections that can allocate a PTY shell.
type Interactive interface {
	Shell(rows, cols int) (Term, error)
}

// Term is an interactive shell: write stdin, read the output pipes.
type Term interface {
	io.WriteCloser
	Stdout() io.Reader
	Stderr() io.Reader
	Resize(rows, cols int) error
}
