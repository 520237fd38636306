// Package notification delivers completion events for menu and image runs
// to push services and MQTT.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/menumaker/menumaker/internal/errors"
)

// Kind identifies the event type.
type Kind string

const (
	KindMenuGenerated   Kind = "menu.generated"
	KindImagesCompleted Kind = "images.completed"
)

// Event describes a finished generation step.
type Event struct {
	Kind            Kind      `json:"kind"`
	Restaurant      string    `json:"restaurant"`
	ItemCount       int       `json:"itemCount"`
	ImagesSucceeded int       `json:"imagesSucceeded"`
	ImagesFailed    int       `json:"imagesFailed"`
	Source          string    `json:"source,omitempty"`
	TraceID         string    `json:"traceId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Title is a short human readable headline for push services.
func (e Event) Title() string {
	switch e.Kind {
	case KindImagesCompleted:
		return "Menu images ready"
	default:
		return "Menu generated"
	}
}

// Message is the human readable body for push services.
func (e Event) Message() string {
	switch e.Kind {
	case KindImagesCompleted:
		return fmt.Sprintf("%s: %d of %d images fetched from %s (%d failed)",
			e.Restaurant, e.ImagesSucceeded, e.ItemCount, e.Source, e.ImagesFailed)
	default:
		msg := fmt.Sprintf("%s: %d menu items generated", e.Restaurant, e.ItemCount)
		if e.ImagesSucceeded+e.ImagesFailed > 0 {
			msg += fmt.Sprintf(", %d images (%d failed)", e.ImagesSucceeded, e.ImagesFailed)
		}
		return msg
	}
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }

// Multi fans an event out to several notifiers. Every notifier is tried;
// the returned error joins all failures.
type Multi struct {
	notifiers []Notifier
}

// NewMulti returns a Multi over the non-nil notifiers.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Len returns the number of wrapped notifiers.
func (m *Multi) Len() int { return len(m.notifiers) }

// Notify implements Notifier.
func (m *Multi) Notify(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
