package remote

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const defaultConnectTimeout = 10 * time.Second

// DialSSH opens an authenticated SSH connection for cfg. On failure nothing
// is left open.
func DialSSH(cfg Config) (Conn, error) {
	var authMethods []ssh.AuthMethod

	switch {
	case cfg.PrivateKey != "":
		var signer ssh.Signer
		var err error
		if cfg.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(cfg.PrivateKey), []byte(cfg.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	default:
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultConnectTimeout
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	client, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	slog.Info("SSH connection established", "host", addr, "user", cfg.User)
	return &sshConn{client: client}, nil
}

type sshConn struct {
	client *ssh.Client

	mu    sync.Mutex
	sftpc *sftp.Client // lazily opened, shared by all file streams
}

func (c *sshConn) NewExec() (Exec, error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open exec channel: %w", err)
	}
	return &sshExec{sess: sess}, nil
}

func (c *sshConn) files() (*sftp.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sftpc != nil {
		return c.sftpc, nil
	}
	sftpc, err := sftp.NewClient(c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to open sftp subsystem: %w", err)
	}
	c.sftpc = sftpc
	return sftpc, nil
}

func (c *sshConn) OpenRead(path string) (io.ReadCloser, error) {
	sftpc, err := c.files()
	if err != nil {
		return nil, err
	}
	f, err := sftpc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func (c *sshConn) OpenWrite(path string) (io.WriteCloser, error) {
	sftpc, err := c.files()
	if err != nil {
		return nil, err
	}
	f, err := sftpc.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func (c *sshConn) Close() error {
	c.mu.Lock()
	if c.sftpc != nil {
		c.sftpc.Close()
		c.sftpc = nil
	}
	c.mu.Unlock()
	return c.client.Close()
}

type sshExec struct {
	sess *ssh.Session
}

func (e *sshExec) Run(command string, stdout, stderr io.Writer) (int, error) {
	e.sess.Stdout = stdout
	e.sess.Stderr = stderr

	err := e.sess.Run(command)
	if err == nil {
		return 0, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		// Remote closed the channel without reporting a status.
		return 0, nil
	}
	return -1, err
}

func (e *sshExec) Close() error {
	return e.sess.Close()
}

func (c *sshConn) Shell(rows, cols int) (Term, error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open shell channel: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("xterm-256color", rows, cols, modes); err != nil {
		sess.Close()
		return nil, fmt.Errorf("failed to request pty: %w", err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		return nil, err
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return nil, err
	}
	stderr, err := sess.StderrPipe()
	if err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	return &sshTerm{sess: sess, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

type sshTerm struct {
	sess   *ssh.Session
	stdin  io.WriteCloser
	stdout io.Reader
	stderr io.Reader
}

func (t *sshTerm) Write(p []byte) (int, error) { return t.stdin.Write(p) }
func (t *sshTerm) Stdout() io.Reader           { return t.stdout }
func (t *sshTerm) Stderr() io.Reader           { return t.stderr }
func (t *sshTerm) Resize(rows, cols int) error { return t.sess.WindowChange(rows, cols) }

func (t *sshTerm) Close() error {
	t.stdin.Close()
	return t.sess.Close()
}
