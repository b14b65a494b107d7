package services

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/relayforge/relayforge/internal/remote"
)

// fakeConn is an in-memory remote.Conn: commands run through a pluggable
// handler and file streams read/write a path-keyed byte map.
type fakeConn struct {
	mu       sync.Mutex
	closed   bool
	files    map[string][]byte
	commands []string

	// handler scripts the outcome of each command.
	handler func(cmd string) (stdout, stderr string, exitCode int, err error)

	execErr  error // returned by NewExec
	writeErr error // returned by OpenWrite
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		files: make(map[string][]byte),
		handler: func(string) (string, string, int, error) {
			return "", "", 0, nil
		},
	}
}

func (c *fakeConn) NewExec() (remote.Exec, error) {
	if c.execErr != nil {
		return nil, c.execErr
	}
	return &fakeExec{conn: c}, nil
}

func (c *fakeConn) OpenRead(path string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (c *fakeConn) OpenWrite(path string) (io.WriteCloser, error) {
	if c.writeErr != nil {
		return nil, c.writeErr
	}
	return &fakeFile{conn: c, path: path}, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) ranCommands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.commands...)
}

func (c *fakeConn) allFiles() map[string][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]byte, len(c.files))
	for k, v := range c.files {
		out[k] = v
	}
	return out
}

type fakeExec struct {
	conn *fakeConn
}

func (e *fakeExec) Run(command string, stdout, stderr io.Writer) (int, error) {
	e.conn.mu.Lock()
	e.conn.commands = append(e.conn.commands, command)
	handler := e.conn.handler
	e.conn.mu.Unlock()

	out, errOut, code, err := handler(command)
	io.WriteString(stdout, out)
	io.WriteString(stderr, errOut)
	return code, err
}

func (e *fakeExec) Close() error { return nil }

type fakeFile struct {
	conn *fakeConn
	path string
	buf  bytes.Buffer
}

func (f *fakeFile) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *fakeFile) Close() error {
	f.conn.mu.Lock()
	f.conn.files[f.path] = f.buf.Bytes()
	f.conn.mu.Unlock()
	return nil
}

// closeRecorder counts Close calls for channel-tracking assertions.
type closeRecorder struct {
	mu     sync.Mutex
	closes int
}

func (r *closeRecorder) Close() error {
	r.mu.Lock()
	r.closes++
	r.mu.Unlock()
	return nil
}
