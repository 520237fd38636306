package notification

import (
	"context"
	"io"
	"log"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/menumaker/menumaker/internal/errors"
)

// sender is the part of shoutrrr's ServiceRouter used here.
type sender interface {
	Send(message string, params *stypes.Params) []error
}

// ShoutrrrNotifier sends events via nicholas-fedor/shoutrrr.
// A single router serves all configured URLs.
type ShoutrrrNotifier struct {
	urls   []string
	sender sender
}

// NewShoutrrr validates urls and builds the router.
func NewShoutrrr(urls []string, timeout time.Duration) (*ShoutrrrNotifier, error) {
	if len(urls) == 0 {
		return nil, errors.Newf("at least one shoutrrr URL is required").
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}
	router, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		// URLs carry tokens, keep them out of the error
		return nil, errors.Newf("invalid shoutrrr URL: %s", errors.ScrubMessage(err.Error())).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if timeout > 0 {
		router.Timeout = timeout
	}
	router.SetLogger(log.New(io.Discard, "", 0))
	return &ShoutrrrNotifier{urls: slices.Clone(urls), sender: router}, nil
}

// Notify implements Notifier. The router applies its own timeout.
func (s *ShoutrrrNotifier) Notify(_ context.Context, event Event) error {
	params := stypes.Params{}
	params.SetTitle(event.Title())

	for _, e := range s.sender.Send(event.Message(), &params) {
		if e != nil {
			return errors.Newf("shoutrrr send failed: %s", errors.ScrubMessage(e.Error())).
				Component("notification").
				Category(errors.CategoryIntegration).
				Context("kind", string(event.Kind)).
				Build()
		}
	}
	return nil
}
