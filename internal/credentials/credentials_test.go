package credentials

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/kvstore"
)

func TestStorageKeys(t *testing.T) {
	assert.Equal(t, "menu-maker-openai-api-key", StorageKey(OpenAI))
	assert.Equal(t, "menu-maker-flickr-api-key", StorageKey(Flickr))
	assert.Equal(t, "menu-maker-pexels-api-key", StorageKey(Pexels))
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" Pexels ")
	require.NoError(t, err)
	assert.Equal(t, Pexels, p)

	_, err = ParseProvider("unsplash")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSaveGetClearVerbatim(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	store := New(kv, "", nil, nil)

	_, ok, err := store.Get(ctx, OpenAI)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, OpenAI, "  sk-with-spaces  "))
	got, ok, err := store.Get(ctx, OpenAI)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "  sk-with-spaces  ", got)

	raw, err := kv.Get(ctx, "menu-maker-openai-api-key")
	require.NoError(t, err)
	assert.Equal(t, "  sk-with-spaces  ", raw)

	require.NoError(t, store.Clear(ctx, OpenAI))
	_, ok, err = store.Get(ctx, OpenAI)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSealedAtRest(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	store := New(kv, "correct horse battery staple", nil, nil)

	require.NoError(t, store.Save(ctx, Pexels, "pexels-secret"))

	raw, err := kv.Get(ctx, StorageKey(Pexels))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, sealedPrefix))
	assert.NotContains(t, raw, "pexels-secret")

	got, ok, err := store.Get(ctx, Pexels)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pexels-secret", got)

	// a different passphrase cannot open it
	other := New(kv, "wrong", nil, nil)
	_, _, err = other.Get(ctx, Pexels)
	require.Error(t, err)

	// nor can a store without encryption
	plain := New(kv, "", nil, nil)
	_, _, err = plain.Get(ctx, Pexels)
	require.Error(t, err)
}

func TestPlaintextValuesReadableAfterEnablingEncryption(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, StorageKey(Flickr), "legacy"))

	store := New(kv, "passphrase", nil, nil)
	got, ok, err := store.Get(ctx, Flickr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "legacy", got)
}

func TestResolveOrder(t *testing.T) {
	ctx := context.Background()
	t.Setenv("MENUMAKER_TEST_PEXELS", "from-env")

	store := New(kvstore.NewMemoryStore(), "", map[Provider]ConfiguredKey{
		Pexels: {Value: "${MENUMAKER_TEST_PEXELS}"},
	}, nil)

	key, err := store.Resolve(ctx, Pexels, "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)

	require.NoError(t, store.Save(ctx, Pexels, "stored"))
	key, err = store.Resolve(ctx, Pexels, "")
	require.NoError(t, err)
	assert.Equal(t, "stored", key)

	key, err = store.Resolve(ctx, Pexels, "explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", key)
}

func TestResolveFromSecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openai.key")
	require.NoError(t, os.WriteFile(path, []byte("sk-file\n"), 0o600))

	store := New(kvstore.NewMemoryStore(), "", map[Provider]ConfiguredKey{
		OpenAI: {File: path, Value: "ignored"},
	}, nil)

	key, err := store.Resolve(context.Background(), OpenAI, "")
	require.NoError(t, err)
	assert.Equal(t, "sk-file", key)
}

func TestRequireKey(t *testing.T) {
	store := New(kvstore.NewMemoryStore(), "", nil, nil)

	_, err := store.RequireKey(context.Background(), Flickr, "   ")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	key, err := store.RequireKey(context.Background(), Flickr, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", key)
}
