package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	resetViper(t)
	path := writeConfig(t, string(getDefaultConfig()))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4", settings.LLM.Model)
	assert.InDelta(t, 0.8, settings.LLM.Temperature, 0.0001)
	assert.Equal(t, 2500, settings.LLM.MaxTokens)
	assert.Equal(t, "dall-e-2", settings.Images.OpenAI.Model)
	assert.Equal(t, "256x256", settings.Images.OpenAI.Size)
	assert.Equal(t, time.Second, settings.Images.Delays.OpenAI)
	assert.Equal(t, 300*time.Millisecond, settings.Images.Delays.Flickr)
	assert.Equal(t, 300*time.Millisecond, settings.Images.Delays.Pexels)
	assert.Equal(t, 200*time.Millisecond, settings.Images.Delays.Foodish)
	assert.Equal(t, 10, settings.History.MaxEntries)
	assert.Equal(t, int64(10*1024*1024), settings.Inline.MaxBytes)
	assert.Equal(t, "sqlite", settings.Storage.Backend)
	assert.Equal(t, settings, GetSettings())
}

func TestLoadOverridesFromFile(t *testing.T) {
	resetViper(t)
	path := writeConfig(t, `
llm:
  model: gpt-4o-mini
history:
  max_entries: 3
storage:
  backend: memory
`)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", settings.LLM.Model)
	assert.Equal(t, 3, settings.History.MaxEntries)
	assert.Equal(t, "memory", settings.Storage.Backend)
	// untouched keys keep their defaults
	assert.Equal(t, 2500, settings.LLM.MaxTokens)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("MENUMAKER_STORAGE_BACKEND", "memory")
	path := writeConfig(t, "llm:\n  api_key: from-file\n")

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", settings.LLM.APIKey)
	assert.Equal(t, "memory", settings.Storage.Backend)
}

func TestInvalidEnvironmentValueIsReported(t *testing.T) {
	resetViper(t)
	t.Setenv("MENUMAKER_PORT", "not-a-port")

	_, err := Load(writeConfig(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MENUMAKER_PORT")
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestValidateSettings(t *testing.T) {
	valid := func() *Settings {
		return &Settings{
			LLM:     LLMSettings{Model: "gpt-4", MaxTokens: 100, Temperature: 0.8},
			Images:  ImageSettings{DefaultSource: "pexels", DefaultStyle: "clip-art"},
			Inline:  InlineSettings{MaxBytes: 1},
			History: HistorySettings{MaxEntries: 10},
			Storage: StorageSettings{Backend: "memory"},
		}
	}

	require.NoError(t, ValidateSettings(valid()))

	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"unknown source", func(s *Settings) { s.Images.DefaultSource = "unsplash" }, "images.default_source"},
		{"unknown style", func(s *Settings) { s.Images.DefaultStyle = "oil" }, "images.default_style"},
		{"zero history", func(s *Settings) { s.History.MaxEntries = 0 }, "history.max_entries"},
		{"mysql without dsn", func(s *Settings) { s.Storage.Backend = "mysql" }, "storage.mysql.dsn"},
		{"unknown backend", func(s *Settings) { s.Storage.Backend = "etcd" }, "storage.backend"},
		{"hot temperature", func(s *Settings) { s.LLM.Temperature = 3 }, "llm.temperature"},
		{"mqtt without broker", func(s *Settings) { s.Notification.MQTT.Enabled = true }, "notification.mqtt.broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, errors.CategoryConfiguration, errors.CategoryOf(err))
		})
	}
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	settings, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	settings.History.MaxEntries = 7

	require.NoError(t, SaveYAMLConfig(path, settings))

	viper.Reset()
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.History.MaxEntries)
}
