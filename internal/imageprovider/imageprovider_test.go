package imageprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/errors"
)

func TestParseSource(t *testing.T) {
	for _, s := range Sources() {
		got, err := ParseSource(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseSource(" Pexels ")
	require.NoError(t, err)
	assert.Equal(t, SourcePexels, got)

	_, err = ParseSource("unsplash")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleClipArt, s)

	s, err = ParseStyle("Pixel-Art")
	require.NoError(t, err)
	assert.Equal(t, StylePixelArt, s)

	_, err = ParseStyle("oil-painting")
	require.Error(t, err)
}

func TestStylePrompt(t *testing.T) {
	assert.Contains(t, StylePrompt(StyleClipArt, ""), "clip art")
	assert.Contains(t, StylePrompt(StyleRealistic, ""), "food photography")
	assert.Equal(t, "Simple clean illustration", StylePrompt(StyleCustom, "  "))
	assert.Equal(t, "neon line art", StylePrompt(StyleCustom, "neon line art"))
	assert.Equal(t, fallbackStylePrompt, StylePrompt(Style("unknown"), ""))

	for _, s := range Styles() {
		assert.NotEmpty(t, StylePrompt(s, ""), s)
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	for _, s := range []Source{SourceOpenAI, SourceFlickr, SourcePexels} {
		_, err := NewProvider(s, Options{Logger: testLogger()})
		require.Error(t, err, s)
		assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	}

	p, err := NewProvider(SourceFoodish, Options{Logger: testLogger()})
	require.NoError(t, err)
	assert.Equal(t, "foodish", p.Name())
}

func TestNewProviderBuildsEachSource(t *testing.T) {
	client, _ := newMockClient(t)
	for _, s := range Sources() {
		p, err := NewProvider(s, Options{APIKey: "key", HTTPClient: client, Logger: testLogger()})
		require.NoError(t, err)
		assert.Equal(t, string(s), p.Name())
	}

	_, err := NewProvider(Source("bing"), Options{APIKey: "key"})
	require.Error(t, err)
}

func TestNamesMatchParsers(t *testing.T) {
	for _, name := range StyleNames() {
		_, err := ParseStyle(name)
		require.NoError(t, err, name)
	}
	assert.Contains(t, StyleNames(), "silly")
	assert.Len(t, StyleNames(), len(Styles()))

	for _, name := range SourceNames() {
		_, err := ParseSource(name)
		require.NoError(t, err, name)
	}
	assert.Equal(t, []string{"openai", "flickr", "pexels", "foodish"}, SourceNames())
}
