package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry(NewTwitterAdapter(), NewDiscordAdapter())

	adapter, ok := registry.Get(Twitter)
	require.True(t, ok)
	assert.Equal(t, Twitter, adapter.Name())

	_, ok = registry.Get("myspace")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{Twitter, Discord}, registry.Names())
}

func TestRegistryRegisterReplaces(t *testing.T) {
	registry := NewRegistry()
	first := NewTiktokAdapter()
	registry.Register(first)
	registry.Register(NewTiktokAdapter())

	adapter, ok := registry.Get(Tiktok)
	require.True(t, ok)
	assert.Equal(t, Tiktok, adapter.Name())
	assert.Len(t, registry.Names(), 1)
}
