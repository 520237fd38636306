package notification

import (
	"context"
	"time"

	"github.com/menumaker/menumaker/internal/conf"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/mqtt"
)

const shoutrrrTimeout = 10 * time.Second

// FromSettings builds the notifiers enabled in settings. Misconfigured or
// unreachable targets are logged and skipped. The returned close function
// releases broker connections.
func FromSettings(ctx context.Context, settings *conf.NotificationSettings, log logger.Logger) (*Multi, func()) {
	log = log.Module("notification")
	var notifiers []Notifier
	closers := []func(){}

	if settings.Shoutrrr.Enabled {
		n, err := NewShoutrrr(settings.Shoutrrr.URLs, shoutrrrTimeout)
		if err != nil {
			log.Warn("shoutrrr notifications disabled", logger.Error(err))
		} else {
			notifiers = append(notifiers, n)
		}
	}

	if settings.MQTT.Enabled {
		client, err := mqtt.NewClient(mqtt.ConfigFromSettings(&settings.MQTT), log)
		if err == nil {
			err = client.Connect(ctx)
		}
		if err != nil {
			log.Warn("mqtt notifications disabled", logger.Error(err))
		} else {
			notifiers = append(notifiers, NewMQTT(client, settings.MQTT.Topic))
			closers = append(closers, client.Disconnect)
		}
	}

	log.Debug("notifiers configured", logger.Int("count", len(notifiers)))
	return NewMulti(notifiers...), func() {
		for _, c := range closers {
			c()
		}
	}
}
