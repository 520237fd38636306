package notification

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/mqtt"
)

// MQTTNotifier publishes events as JSON to <topic>/<kind>.
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
}

// NewMQTT returns a notifier publishing through client under topic.
func NewMQTT(client mqtt.Client, topic string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: strings.TrimSuffix(topic, "/")}
}

// Topic returns the topic an event of kind is published to.
func (m *MQTTNotifier) Topic(kind Kind) string {
	return m.topic + "/" + string(kind)
}

// Notify implements Notifier.
func (m *MQTTNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryGeneric).
			Build()
	}
	return m.client.Publish(ctx, m.Topic(event.Kind), payload)
}
