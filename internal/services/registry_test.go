package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndAcquire(t *testing.T) {
	reg := NewRegistry(time.Minute)
	conn := newFakeConn()

	id := reg.Add(conn, "host1", 22, "alice")
	require.NotEmpty(t, id)

	got, err := reg.Acquire(id)
	require.NoError(t, err)
	assert.Same(t, conn, got.(*fakeConn))

	info, err := reg.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "host1", info.Host)
	assert.Equal(t, 22, info.Port)
	assert.Equal(t, "alice", info.Username)
}

func TestRegistryAcquireUnknown(t *testing.T) {
	reg := NewRegistry(time.Minute)

	_, err := reg.Acquire("no-such-session")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRegistryIdsAreUnique(t *testing.T) {
	reg := NewRegistry(time.Minute)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := reg.Add(newFakeConn(), "h", 22, "u")
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry(time.Minute)
	conn := newFakeConn()
	id := reg.Add(conn, "h", 22, "u")

	assert.True(t, reg.Remove(id))
	assert.False(t, reg.Remove(id))
	assert.True(t, conn.isClosed())

	_, err := reg.Acquire(id)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRegistryRemoveClosesTrackedChannels(t *testing.T) {
	reg := NewRegistry(time.Minute)
	conn := newFakeConn()
	id := reg.Add(conn, "h", 22, "u")

	ch := &closeRecorder{}
	reg.Track(id, ch)
	reg.Remove(id)

	assert.Equal(t, 1, ch.closes)
}

func TestRegistryUntrack(t *testing.T) {
	reg := NewRegistry(time.Minute)
	id := reg.Add(newFakeConn(), "h", 22, "u")

	ch := &closeRecorder{}
	reg.Track(id, ch)
	reg.Untrack(id, ch)
	reg.Remove(id)

	assert.Equal(t, 0, ch.closes)
}

func TestRegistryReapDisconnectsIdleSessions(t *testing.T) {
	reg := NewRegistry(20 * time.Millisecond)
	conn := newFakeConn()
	id := reg.Add(conn, "h", 22, "u")

	// Fresh session survives a sweep.
	assert.Equal(t, 0, reg.Reap())
	require.Equal(t, 1, reg.Count())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, reg.Reap())
	assert.Equal(t, 0, reg.Count())
	assert.True(t, conn.isClosed())

	_, err := reg.Acquire(id)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRegistryTouchKeepsSessionAlive(t *testing.T) {
	reg := NewRegistry(50 * time.Millisecond)
	id := reg.Add(newFakeConn(), "h", 22, "u")

	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		reg.Touch(id)
		assert.Equal(t, 0, reg.Reap())
	}
	assert.Equal(t, 1, reg.Count())
}

func TestRegistryListAndCount(t *testing.T) {
	reg := NewRegistry(time.Minute)
	assert.Empty(t, reg.List())

	reg.Add(newFakeConn(), "a", 22, "u")
	reg.Add(newFakeConn(), "b", 2222, "v")

	assert.Equal(t, 2, reg.Count())
	assert.Len(t, reg.List(), 2)
}

func TestRegistryStopClosesEverything(t *testing.T) {
	reg := NewRegistry(time.Minute)
	conns := []*fakeConn{newFakeConn(), newFakeConn()}
	for _, c := range conns {
		reg.Add(c, "h", 22, "u")
	}

	reg.Stop()
	assert.Equal(t, 0, reg.Count())
	for _, c := range conns {
		assert.True(t, c.isClosed())
	}
}
