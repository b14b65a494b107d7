package tools

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/relayforge/internal/services"
)

func newTestRegistry() *Registry {
	registry := services.NewRegistry(time.Minute)
	connector := services.NewConnector(registry, 10*time.Second, nil)
	executor := services.NewExecutor(registry, nil)
	transfer := services.NewTransfer(registry, nil)
	extractor := services.NewLogExtractor(executor, transfer)
	return NewRegistry(connector, registry, executor, transfer, extractor)
}

func TestDefinitionsCoverEveryOperation(t *testing.T) {
	defs := newTestRegistry().Definitions()
	require.Len(t, defs, 7)

	names := make(map[string]bool)
	for _, def := range defs {
		fn, ok := def["function"].(map[string]interface{})
		require.True(t, ok)
		names[fn["name"].(string)] = true
	}

	for _, want := range []string{
		"connect", "disconnect", "execute", "upload_file", "download_file",
		"extract_logs_by_line_range", "extract_logs_by_time_range",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestCallUnknownTool(t *testing.T) {
	_, err := newTestRegistry().Call("reboot_everything", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestCallInvalidArguments(t *testing.T) {
	_, err := newTestRegistry().Call("execute", json.RawMessage(`{"sessionId": 42}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}

func TestCallConnectWithoutCredentials(t *testing.T) {
	_, err := newTestRegistry().Call("connect",
		json.RawMessage(`{"host": "example.com", "username": "root"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrAuthConfig))
}

func TestCallDisconnectUnknownSession(t *testing.T) {
	result, err := newTestRegistry().Call("disconnect",
		json.RawMessage(`{"sessionId": "never-connected"}`))
	require.NoError(t, err)
	assert.Equal(t, false, result)
}

func TestCallLineRangeRejectsMissingStartLine(t *testing.T) {
	_, err := newTestRegistry().Call("extract_logs_by_line_range",
		json.RawMessage(`{"sessionId": "s", "filePath": "/var/log/app.log"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startLine")
}

func TestCallExecuteUnknownSession(t *testing.T) {
	_, err := newTestRegistry().Call("execute",
		json.RawMessage(`{"sessionId": "nope", "command": "uptime"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrSessionNotFound))
}
