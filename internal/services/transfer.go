package services

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// Transfer moves file content over a session's byte streams.
type Transfer struct {
	registry *Registry
	audit    *Recorder
}

func NewTransfer(registry *Registry, audit *Recorder) *Transfer {
	return &Transfer{registry: registry, audit: audit}
}

// Upload writes content in full to remotePath. Success is signaled only by
// clean stream closure; any stream error aborts with that error.
func (t *Transfer) Upload(sessionID, content, remotePath string) error {
	conn, err := t.registry.Acquire(sessionID)
	if err != nil {
		return err
	}

	w, err := conn.OpenWrite(remotePath)
	if err != nil {
		return &ChannelError{Op: "open write stream", Err: err}
	}
	t.registry.Track(sessionID, w)
	defer t.registry.Untrack(sessionID, w)

	if _, err := io.WriteString(w, content); err != nil {
		w.Close()
		return &ChannelError{Op: "write " + remotePath, Err: err}
	}
	if err := w.Close(); err != nil {
		return &ChannelError{Op: "close " + remotePath, Err: err}
	}

	t.audit.Transfer(sessionID, "upload", remotePath, len(content))
	return nil
}

// Download reads remotePath to the end and returns its content decoded with
// the requested encoding. The default is utf8, which returns the bytes as-is.
func (t *Transfer) Download(sessionID, remotePath, encoding string) (string, error) {
	conn, err := t.registry.Acquire(sessionID)
	if err != nil {
		return "", err
	}

	r, err := conn.OpenRead(remotePath)
	if err != nil {
		return "", &ChannelError{Op: "open read stream", Err: err}
	}
	t.registry.Track(sessionID, r)
	defer func() {
		t.registry.Untrack(sessionID, r)
		r.Close()
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &ChannelError{Op: "read " + remotePath, Err: err}
	}

	content, err := decode(data, encoding)
	if err != nil {
		return "", err
	}

	t.audit.Transfer(sessionID, "download", remotePath, len(data))
	return content, nil
}

func decode(data []byte, encoding string) (string, error) {
	switch encoding {
	case "", "utf8", "utf-8":
		return string(data), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(data), nil
	case "hex":
		return hex.EncodeToString(data), nil
	case "latin1", "binary":
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}
