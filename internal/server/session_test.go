package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewSession(server)
}

func TestRegistryBindAndRelease(t *testing.T) {
	registry := NewRegistry()
	session := newTestSession(t)

	require.NoError(t, registry.Bind("client_1", session))
	assert.Equal(t, StateRegistered, session.State())
	assert.Equal(t, "client_1", session.Tag())
	assert.Equal(t, 1, registry.Count())
	assert.Equal(t, []string{"client_1"}, registry.Tags())

	registry.Release("client_1")
	assert.Equal(t, 0, registry.Count())
}

func TestRegistryRejectsDuplicateTag(t *testing.T) {
	registry := NewRegistry()
	first := newTestSession(t)
	second := newTestSession(t)

	require.NoError(t, registry.Bind("client_1", first))
	err := registry.Bind("client_1", second)
	assert.ErrorIs(t, err, ErrTagInUse)
	assert.NotEqual(t, StateRegistered, second.State())
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryTagReusableAfterRelease(t *testing.T) {
	registry := NewRegistry()
	first := newTestSession(t)
	second := newTestSession(t)

	require.NoError(t, registry.Bind("client_1", first))
	registry.Release("client_1")
	assert.NoError(t, registry.Bind("client_1", second))
}

func TestRegistryRejectsEmptyTag(t *testing.T) {
	registry := NewRegistry()
	session := newTestSession(t)

	assert.ErrorIs(t, registry.Bind("", session), ErrTagFormat)
	assert.Equal(t, 0, registry.Count())
}
