// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix prefixes automatically bound variables, e.g. MENUMAKER_STORAGE_BACKEND.
const envPrefix = "MENUMAKER"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns the explicit bindings. Provider keys also honour
// their conventional unprefixed names.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "MENUMAKER_DEBUG", validateEnvBool},
		{"llm.api_key", "OPENAI_API_KEY", nil},
		{"llm.model", "MENUMAKER_LLM_MODEL", nil},
		{"images.flickr.api_key", "FLICKR_API_KEY", nil},
		{"images.pexels.api_key", "PEXELS_API_KEY", nil},
		{"images.default_source", "MENUMAKER_IMAGE_SOURCE", validateEnvImageSource},
		{"storage.backend", "MENUMAKER_STORAGE_BACKEND", validateEnvBackend},
		{"storage.redis.addr", "MENUMAKER_REDIS_ADDR", nil},
		{"storage.mysql.dsn", "MENUMAKER_MYSQL_DSN", nil},
		{"storage.postgres.dsn", "MENUMAKER_POSTGRES_DSN", nil},
		{"webserver.port", "MENUMAKER_PORT", validateEnvPort},
		{"telemetry.dsn", "SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateEnvBackend(value string) error {
	if !isKnown(value, StorageBackends) {
		return fmt.Errorf("must be one of %s", strings.Join(StorageBackends, ", "))
	}
	return nil
}

func validateEnvImageSource(value string) error {
	if !isKnown(value, ImageSources) {
		return fmt.Errorf("must be one of %s", strings.Join(ImageSources, ", "))
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return bindEnvVars()
}
