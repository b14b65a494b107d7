package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/relayforge/internal/remote"
)

func newTestConnector(reg *Registry, dial func(remote.Config) (remote.Conn, error)) *Connector {
	c := NewConnector(reg, 10*time.Second, nil)
	c.dial = dial
	return c
}

func TestConnectRequiresCredentials(t *testing.T) {
	reg := NewRegistry(time.Minute)
	dialed := false
	c := newTestConnector(reg, func(remote.Config) (remote.Conn, error) {
		dialed = true
		return newFakeConn(), nil
	})

	_, err := c.Connect(remote.Config{Host: "h", User: "u"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthConfig))
	assert.False(t, dialed, "no network attempt without credentials")
	assert.Equal(t, 0, reg.Count())
}

func TestConnectAppliesDefaults(t *testing.T) {
	reg := NewRegistry(time.Minute)
	var got remote.Config
	c := newTestConnector(reg, func(cfg remote.Config) (remote.Conn, error) {
		got = cfg
		return newFakeConn(), nil
	})

	id, err := c.Connect(remote.Config{Host: "h", User: "u", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 22, got.Port)
	assert.Equal(t, 10*time.Second, got.Timeout)

	info, err := reg.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "h", info.Host)
}

func TestConnectKeepsExplicitValues(t *testing.T) {
	reg := NewRegistry(time.Minute)
	var got remote.Config
	c := newTestConnector(reg, func(cfg remote.Config) (remote.Conn, error) {
		got = cfg
		return newFakeConn(), nil
	})

	_, err := c.Connect(remote.Config{
		Host:       "h",
		Port:       2222,
		User:       "u",
		PrivateKey: "---key---",
		Timeout:    3 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 2222, got.Port)
	assert.Equal(t, 3*time.Second, got.Timeout)
}

func TestConnectFailureLeavesNoSession(t *testing.T) {
	reg := NewRegistry(time.Minute)
	c := newTestConnector(reg, func(remote.Config) (remote.Conn, error) {
		return nil, errors.New("auth failed")
	})

	_, err := c.Connect(remote.Config{Host: "h", User: "u", Password: "bad"})
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Contains(t, connErr.Error(), "h:22")
	assert.Contains(t, connErr.Error(), "auth failed")
	assert.Equal(t, 0, reg.Count())
}

func TestDisconnect(t *testing.T) {
	reg := NewRegistry(time.Minute)
	c := newTestConnector(reg, func(remote.Config) (remote.Conn, error) {
		return newFakeConn(), nil
	})

	id, err := c.Connect(remote.Config{Host: "h", User: "u", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, c.Disconnect(id))
	assert.False(t, c.Disconnect(id))
	assert.False(t, c.Disconnect("never-existed"))
}
