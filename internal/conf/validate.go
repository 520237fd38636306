// conf/validate.go

package conf

import (
	"fmt"
	"slices"
	"strings"

	"github.com/menumaker/menumaker/internal/errors"
)

// Known option values.
var (
	StorageBackends = []string{"memory", "sqlite", "mysql", "postgres", "redis"}
	ImageSources    = []string{"openai", "flickr", "pexels", "foodish"}
	ImageStyles     = []string{"clip-art", "realistic", "cartoon", "watercolor", "sketch", "pixel-art", "silly", "custom"}
	LogLevels       = []string{"trace", "debug", "info", "warn", "error"}
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ErrorCategory marks validation failures as configuration errors.
func (ve ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryConfiguration
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}
	add := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}

	if lvl := settings.Main.Log.DefaultLevel; lvl != "" && !isKnown(lvl, LogLevels) {
		add("main.log.default_level %q is not one of %s", lvl, strings.Join(LogLevels, ", "))
	}

	if settings.LLM.Model == "" {
		add("llm.model must not be empty")
	}
	if settings.LLM.MaxTokens <= 0 {
		add("llm.max_tokens must be positive")
	}
	if settings.LLM.Temperature < 0 || settings.LLM.Temperature > 2 {
		add("llm.temperature must be between 0 and 2")
	}

	if !isKnown(settings.Images.DefaultSource, ImageSources) {
		add("images.default_source %q is not one of %s", settings.Images.DefaultSource, strings.Join(ImageSources, ", "))
	}
	if !isKnown(settings.Images.DefaultStyle, ImageStyles) {
		add("images.default_style %q is not one of %s", settings.Images.DefaultStyle, strings.Join(ImageStyles, ", "))
	}
	d := settings.Images.Delays
	if d.OpenAI < 0 || d.Flickr < 0 || d.Pexels < 0 || d.Foodish < 0 {
		add("images.delays must not be negative")
	}

	if settings.Inline.MaxBytes <= 0 {
		add("inline.max_bytes must be positive")
	}

	if settings.History.MaxEntries < 1 {
		add("history.max_entries must be at least 1")
	}

	validateStorageSettings(&settings.Storage, add)

	if settings.Notification.MQTT.Enabled && settings.Notification.MQTT.Broker == "" {
		add("notification.mqtt.broker is required when mqtt is enabled")
	}
	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		add("telemetry.dsn is required when telemetry is enabled")
	}
	if settings.HTTP.RequestsPerSecond < 0 {
		add("http.requests_per_second must not be negative")
	}

	if len(ve.Errors) > 0 {
		return errors.New(ve).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func validateStorageSettings(s *StorageSettings, add func(string, ...any)) {
	switch s.Backend {
	case "memory":
	case "sqlite":
		if s.SQLite.Path == "" {
			add("storage.sqlite.path is required for the sqlite backend")
		}
	case "mysql":
		if s.MySQL.DSN == "" {
			add("storage.mysql.dsn is required for the mysql backend")
		}
	case "postgres":
		if s.Postgres.DSN == "" {
			add("storage.postgres.dsn is required for the postgres backend")
		}
	case "redis":
		if s.Redis.Addr == "" {
			add("storage.redis.addr is required for the redis backend")
		}
	default:
		add("storage.backend %q is not one of %s", s.Backend, strings.Join(StorageBackends, ", "))
	}
}

func isKnown(value string, known []string) bool {
	return slices.Contains(known, value)
}
