// Package prefs stores user interface preferences.
package prefs

import (
	"context"
	"strconv"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/kvstore"
	"github.com/menumaker/menumaker/internal/logger"
)

// DarkModeKey holds the dark mode flag as a JSON boolean.
const DarkModeKey = "menu-maker-dark-mode"

// Store reads and writes preferences.
type Store struct {
	kv     kvstore.Store
	logger logger.Logger
}

// New creates a preference store.
func New(kv kvstore.Store, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &Store{kv: kv, logger: log.Module("prefs")}
}

// DarkMode reports the dark mode flag. It defaults to true when the value is
// missing, unparsable or the store fails.
func (s *Store) DarkMode(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, DarkModeKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn("failed to read dark mode preference", logger.Error(err))
		}
		return true
	}

	switch raw {
	case "true":
		return true
	case "false":
		return false
	default:
		s.logger.Debug("ignoring unparsable dark mode value", logger.String("value", raw))
		return true
	}
}

// SetDarkMode persists the dark mode flag.
func (s *Store) SetDarkMode(ctx context.Context, enabled bool) error {
	return s.kv.Set(ctx, DarkModeKey, strconv.FormatBool(enabled))
}
