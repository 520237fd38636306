// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "menumaker")
	viper.SetDefault("main.log.default_level", "info")
	viper.SetDefault("main.log.timezone", "Local")
	viper.SetDefault("main.log.console.enabled", true)
	viper.SetDefault("main.log.console.level", "info")
	viper.SetDefault("main.log.file_output.enabled", false)
	viper.SetDefault("main.log.file_output.path", "logs/menumaker.log")
	viper.SetDefault("main.log.file_output.level", "debug")

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.temperature", 0.8)
	viper.SetDefault("llm.max_tokens", 2500)
	viper.SetDefault("llm.timeout", 2*time.Minute)

	viper.SetDefault("images.default_source", "openai")
	viper.SetDefault("images.default_style", "clip-art")
	viper.SetDefault("images.background", "plain white background")
	viper.SetDefault("images.delays.openai", time.Second)
	viper.SetDefault("images.delays.flickr", 300*time.Millisecond)
	viper.SetDefault("images.delays.pexels", 300*time.Millisecond)
	viper.SetDefault("images.delays.foodish", 200*time.Millisecond)
	viper.SetDefault("images.openai.model", "dall-e-2")
	viper.SetDefault("images.openai.size", "256x256")
	viper.SetDefault("images.flickr.base_url", "https://api.flickr.com/services/rest/")
	viper.SetDefault("images.pexels.base_url", "https://api.pexels.com/v1/search")
	viper.SetDefault("images.foodish.base_url", "https://foodish-api.com/api/")

	viper.SetDefault("inline.enabled", true)
	viper.SetDefault("inline.max_bytes", 10*1024*1024)
	viper.SetDefault("inline.cache_ttl", time.Hour)

	viper.SetDefault("history.max_entries", 10)

	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.sqlite.path", "menumaker.db")
	viper.SetDefault("storage.mysql.dsn", "")
	viper.SetDefault("storage.postgres.dsn", "")
	viper.SetDefault("storage.redis.addr", "localhost:6379")
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.prefix", "menumaker:")
	viper.SetDefault("storage.encryption_key", "")

	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("render.qr_url", "")

	viper.SetDefault("notification.shoutrrr.enabled", false)
	viper.SetDefault("notification.shoutrrr.urls", []string{})
	viper.SetDefault("notification.mqtt.enabled", false)
	viper.SetDefault("notification.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("notification.mqtt.topic", "menumaker")
	viper.SetDefault("notification.mqtt.client_id", "menumaker")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")

	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.user_agent", "menumaker/1.0")
	viper.SetDefault("http.requests_per_second", 0)
}
