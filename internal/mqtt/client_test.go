// client_test.go: tests for the MQTT client that do not need a live broker.

package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/conf"
	"github.com/menumaker/menumaker/internal/errors"
)

func TestNewClientRequiresBroker(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestPublishWhileDisconnected(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Broker: "tcp://localhost:1883", ClientID: "test"}, nil)
	require.NoError(t, err)

	assert.False(t, c.IsConnected())
	err = c.Publish(context.Background(), "menumaker/test", []byte("{}"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))

	// Disconnect on a never-connected client is a no-op.
	c.Disconnect()
}

func TestConnectUnresolvableHost(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{
		Broker:            "tcp://unresolvable.invalid:1883",
		ClientID:          "test",
		ReconnectCooldown: time.Minute,
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.Error(t, c.Connect(ctx))

	// A second attempt inside the cooldown fails fast.
	start := time.Now()
	require.Error(t, c.Connect(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	cfg := ConfigFromSettings(&conf.MQTTSettings{
		Broker:   "tcp://broker:1883",
		ClientID: "menumaker",
		Username: "u",
		Password: "p",
	})

	assert.Equal(t, "tcp://broker:1883", cfg.Broker)
	assert.Equal(t, "menumaker", cfg.ClientID)
	assert.Equal(t, "u", cfg.Username)
	assert.Equal(t, "p", cfg.Password)
	assert.Equal(t, DefaultConfig().PublishTimeout, cfg.PublishTimeout)
}
