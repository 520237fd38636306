// config.go: settings struct for menumaker and functions to load and save it.
package conf

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// MainSettings contains application identity and logging.
type MainSettings struct {
	Name string               `yaml:"name" mapstructure:"name"`
	Log  logger.LoggingConfig `yaml:"log" mapstructure:"log"`
}

// LLMSettings configures menu text generation.
type LLMSettings struct {
	Model       string        `yaml:"model" mapstructure:"model"`               // chat completion model
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`         // empty uses the public endpoint
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`           // may reference ${ENV_VAR}
	APIKeyFile  string        `yaml:"api_key_file" mapstructure:"api_key_file"` // mounted secret, wins over api_key
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ProviderDelays are the fixed pauses between consecutive items of an image batch.
type ProviderDelays struct {
	OpenAI  time.Duration `yaml:"openai" mapstructure:"openai"`
	Flickr  time.Duration `yaml:"flickr" mapstructure:"flickr"`
	Pexels  time.Duration `yaml:"pexels" mapstructure:"pexels"`
	Foodish time.Duration `yaml:"foodish" mapstructure:"foodish"`
}

// OpenAIImageSettings configures image synthesis.
type OpenAIImageSettings struct {
	Model string `yaml:"model" mapstructure:"model"`
	Size  string `yaml:"size" mapstructure:"size"`
}

// StockProviderSettings configures a keyed stock photo provider.
type StockProviderSettings struct {
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	APIKeyFile string `yaml:"api_key_file" mapstructure:"api_key_file"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
}

// FoodishSettings configures the keyless random food photo provider.
type FoodishSettings struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ImageSettings configures per-item image acquisition.
type ImageSettings struct {
	DefaultSource string                `yaml:"default_source" mapstructure:"default_source"`
	DefaultStyle  string                `yaml:"default_style" mapstructure:"default_style"`
	Background    string                `yaml:"background" mapstructure:"background"`
	Delays        ProviderDelays        `yaml:"delays" mapstructure:"delays"`
	OpenAI        OpenAIImageSettings   `yaml:"openai" mapstructure:"openai"`
	Flickr        StockProviderSettings `yaml:"flickr" mapstructure:"flickr"`
	Pexels        StockProviderSettings `yaml:"pexels" mapstructure:"pexels"`
	Foodish       FoodishSettings       `yaml:"foodish" mapstructure:"foodish"`
}

// InlineSettings configures embedding fetched images as data URIs.
type InlineSettings struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxBytes int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// HistorySettings configures saved menu snapshots.
type HistorySettings struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// SQLiteSettings configures the sqlite backend.
type SQLiteSettings struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DSNSettings configures a DSN based SQL backend.
type DSNSettings struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// RedisSettings configures the redis backend.
type RedisSettings struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// StorageSettings selects and configures the key-value store.
type StorageSettings struct {
	Backend       string         `yaml:"backend" mapstructure:"backend"` // memory, sqlite, mysql, postgres or redis
	SQLite        SQLiteSettings `yaml:"sqlite" mapstructure:"sqlite"`
	MySQL         DSNSettings    `yaml:"mysql" mapstructure:"mysql"`
	Postgres      DSNSettings    `yaml:"postgres" mapstructure:"postgres"`
	Redis         RedisSettings  `yaml:"redis" mapstructure:"redis"`
	EncryptionKey string         `yaml:"encryption_key" mapstructure:"encryption_key"` // seals stored API keys when set
}

// WebServerSettings configures the HTTP server.
type WebServerSettings struct {
	Port  string `yaml:"port" mapstructure:"port"`
	Debug bool   `yaml:"debug" mapstructure:"debug"`
}

// RenderSettings configures printable views.
type RenderSettings struct {
	QRURL string `yaml:"qr_url" mapstructure:"qr_url"` // printed as a QR code on the menu sheet when set
}

// ShoutrrrSettings configures push notifications.
type ShoutrrrSettings struct {
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
	URLs    []string `yaml:"urls" mapstructure:"urls"`
}

// MQTTSettings configures event publishing.
type MQTTSettings struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Broker   string `yaml:"broker" mapstructure:"broker"`
	Topic    string `yaml:"topic" mapstructure:"topic"`
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// NotificationSettings configures completion notifications.
type NotificationSettings struct {
	Shoutrrr ShoutrrrSettings `yaml:"shoutrrr" mapstructure:"shoutrrr"`
	MQTT     MQTTSettings     `yaml:"mqtt" mapstructure:"mqtt"`
}

// TelemetrySettings configures error reporting.
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN     string `yaml:"dsn" mapstructure:"dsn"`
}

// HTTPSettings configures the shared outgoing HTTP client.
type HTTPSettings struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// Settings contains all configuration options for menumaker.
type Settings struct {
	Debug        bool                 `yaml:"debug" mapstructure:"debug"`
	Main         MainSettings         `yaml:"main" mapstructure:"main"`
	LLM          LLMSettings          `yaml:"llm" mapstructure:"llm"`
	Images       ImageSettings        `yaml:"images" mapstructure:"images"`
	Inline       InlineSettings       `yaml:"inline" mapstructure:"inline"`
	History      HistorySettings      `yaml:"history" mapstructure:"history"`
	Storage      StorageSettings      `yaml:"storage" mapstructure:"storage"`
	WebServer    WebServerSettings    `yaml:"webserver" mapstructure:"webserver"`
	Render       RenderSettings       `yaml:"render" mapstructure:"render"`
	Notification NotificationSettings `yaml:"notification" mapstructure:"notification"`
	Telemetry    TelemetrySettings    `yaml:"telemetry" mapstructure:"telemetry"`
	HTTP         HTTPSettings         `yaml:"http" mapstructure:"http"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads .env, the config file and environment variables into Settings.
// An empty configFile searches the default config paths.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.New(fmt.Errorf("error loading .env: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := initViper(configFile); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults and env bindings and reads the config file.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.New(fmt.Errorf("error reading config file %s: %w", configFile, err)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range GetDefaultConfigPaths() {
		viper.AddConfigPath(path)
	}

	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return errors.New(fmt.Errorf("fatal error reading config file: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return createDefaultConfig()
}

// createDefaultConfig writes the embedded config to the user config directory.
// When that is not writable the embedded config is used from memory.
func createDefaultConfig() error {
	defaultConfig := getDefaultConfig()

	if path, err := writeDefaultConfig(defaultConfig); err == nil {
		viper.SetConfigFile(path)
		fmt.Println("Created default config file at:", path)
		return viper.ReadInConfig()
	}

	return viper.ReadConfig(bytes.NewReader(defaultConfig))
}

func writeDefaultConfig(data []byte) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configPath := filepath.Join(home, ".config", "menumaker", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return "", err
	}
	return configPath, nil
}

// getDefaultConfig returns the embedded default config.yaml.
func getDefaultConfig() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		panic("conf: embedded config.yaml missing: " + err.Error())
	}
	return data
}

// GetSettings returns the most recently loaded settings.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically. Comments are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "menumaker"))
	}
	return append(paths, "/etc/menumaker")
}
