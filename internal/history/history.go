// Package history keeps the most recent generated menus.
//
// The whole history is a single JSON array stored under one key, newest
// entry first. Reads are lenient: missing or corrupt data is an empty history.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/kvstore"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

const (
	// StorageKey is the key-value store key of the history array.
	StorageKey = "menu-maker-history"

	// DefaultMaxEntries is the history cap.
	DefaultMaxEntries = 10

	idPrefix = "menu-"
)

// Entry is one saved menu.
type Entry struct {
	ID         string          `json:"id"`
	Restaurant menu.Restaurant `json:"restaurant"`
	Timestamp  int64           `json:"timestamp"` // unix milliseconds
	Prompt     string          `json:"prompt"`
}

// Time returns the entry timestamp.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Service reads and writes the history.
type Service struct {
	kv         kvstore.Store
	maxEntries int
	now        func() time.Time
	logger     logger.Logger

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithMaxEntries overrides the history cap.
func WithMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a history service over kv.
func NewService(kv kvstore.Store, opts ...Option) *Service {
	s := &Service{
		kv:         kv,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		logger:     logger.NewSlogLogger(nil, logger.LogLevelInfo, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Module("history")
	return s
}

// MaxEntries returns the history cap.
func (s *Service) MaxEntries() int { return s.maxEntries }

// Save snapshots r as the newest entry and evicts the oldest beyond the cap.
func (s *Service) Save(ctx context.Context, r *menu.Restaurant, prompt string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return Entry{}, err
	}

	ts := s.now().UnixMilli()
	for containsID(entries, entryID(ts)) {
		ts++
	}

	entry := Entry{
		ID:         entryID(ts),
		Restaurant: r.Clone(),
		Timestamp:  ts,
		Prompt:     prompt,
	}

	entries = slices.Insert(entries, 0, entry)
	if len(entries) > s.maxEntries {
		s.logger.Debug("evicting oldest history entries",
			logger.Int("evicted", len(entries)-s.maxEntries))
		entries = entries[:s.maxEntries]
	}

	if err := s.store(ctx, entries); err != nil {
		return Entry{}, err
	}

	s.logger.Info("menu saved to history",
		logger.String("id", entry.ID),
		logger.String("restaurant", r.Name),
		logger.Int("entries", len(entries)))
	return entry, nil
}

// List returns all entries, newest first. It never fails; read errors and
// corrupt data are logged and yield an empty list.
func (s *Service) List(ctx context.Context) []Entry {
	entries, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("failed to read history", logger.Error(err))
		return []Entry{}
	}
	return entries
}

// Get returns the entry with the given id.
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	for _, e := range s.List(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, errors.NotFoundError("history", "history entry", id)
}

// Delete removes the entry with the given id. Unknown ids change nothing.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(slices.Clone(entries), func(e Entry) bool { return e.ID == id })
	if len(kept) == len(entries) {
		s.logger.Debug("history entry not present", logger.String("id", id))
		return nil
	}

	return s.store(ctx, kept)
}

// Clear removes the whole history.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return err
	}
	s.logger.Info("history cleared")
	return nil
}

// load returns the stored entries. Missing and corrupt data are an empty
// history; only store failures are returned.
func (s *Service) load(ctx context.Context) ([]Entry, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("history data is corrupt, treating as empty",
			logger.Error(err),
			logger.Int("bytes", len(raw)))
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Service) store(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.New(fmt.Errorf("encode history: %w", err)).
			Component("history").
			Category(errors.CategoryGeneric).
			Build()
	}
	return s.kv.Set(ctx, StorageKey, string(data))
}

func entryID(ts int64) string {
	return fmt.Sprintf("%s%d", idPrefix, ts)
}

func containsID(entries []Entry, id string) bool {
	return slices.ContainsFunc(entries, func(e Entry) bool { return e.ID == id })
}
