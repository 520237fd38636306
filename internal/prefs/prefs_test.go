package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/kvstore"
)

func TestDarkModeDefaultsToTrue(t *testing.T) {
	store := New(kvstore.NewMemoryStore(), nil)
	assert.True(t, store.DarkMode(context.Background()))
}

func TestDarkModePersists(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	store := New(kv, nil)

	require.NoError(t, store.SetDarkMode(ctx, false))
	assert.False(t, store.DarkMode(ctx))

	raw, err := kv.Get(ctx, DarkModeKey)
	require.NoError(t, err)
	assert.Equal(t, "false", raw)

	// a fresh store over the same data sees the saved value
	assert.False(t, New(kv, nil).DarkMode(ctx))

	require.NoError(t, store.SetDarkMode(ctx, true))
	assert.True(t, store.DarkMode(ctx))
}

func TestDarkModeUnparsableIsTrue(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, DarkModeKey, "{not json"))

	assert.True(t, New(kv, nil).DarkMode(ctx))
}
