// Package credentials stores per-provider API keys in the key-value store.
package credentials

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/kvstore"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/secrets"
)

// Provider names a service that needs an API key.
type Provider string

const (
	OpenAI Provider = "openai"
	Flickr Provider = "flickr"
	Pexels Provider = "pexels"
)

// Providers lists every provider with a stored key.
func Providers() []Provider {
	return []Provider{OpenAI, Flickr, Pexels}
}

// ParseProvider returns the provider with the given name. Unknown names are
// not-found errors.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Providers(), p) {
		return "", errors.NotFoundError("credentials", "provider", name)
	}
	return p, nil
}

// StorageKey is the fixed key-value store key for a provider's API key.
func StorageKey(p Provider) string {
	return "menu-maker-" + string(p) + "-api-key"
}

// ConfiguredKey is a key from config or environment. File wins over Value.
type ConfiguredKey struct {
	File  string
	Value string
}

// Store saves, loads and resolves API keys.
type Store struct {
	kv         kvstore.Store
	box        *sealer
	configured map[Provider]ConfiguredKey
	logger     logger.Logger
}

// New creates a Store. A non-empty encryptionKey seals stored keys at rest.
func New(kv kvstore.Store, encryptionKey string, configured map[Provider]ConfiguredKey, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	s := &Store{
		kv:         kv,
		configured: configured,
		logger:     log.Module("credentials"),
	}
	if encryptionKey != "" {
		s.box = newSealer(encryptionKey)
	}
	return s
}

// Save stores value verbatim for p.
func (s *Store) Save(ctx context.Context, p Provider, value string) error {
	stored := value
	if s.box != nil {
		sealed, err := s.box.seal(value)
		if err != nil {
			return err
		}
		stored = sealed
	}

	if err := s.kv.Set(ctx, StorageKey(p), stored); err != nil {
		return err
	}
	s.logger.Info("api key saved",
		logger.String("provider", string(p)),
		logger.String("key", secrets.Mask(value)))
	return nil
}

// Get returns the stored key for p, and false when none is stored.
func (s *Store) Get(ctx context.Context, p Provider) (string, bool, error) {
	stored, err := s.kv.Get(ctx, StorageKey(p))
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if !isSealed(stored) {
		return stored, true, nil
	}
	if s.box == nil {
		return "", false, errors.Newf("stored %s key is sealed but no encryption key is configured", p).
			Component("credentials").
			Category(errors.CategoryConfiguration).
			Build()
	}
	value, err := s.box.open(stored)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Clear removes the stored key for p.
func (s *Store) Clear(ctx context.Context, p Provider) error {
	if err := s.kv.Delete(ctx, StorageKey(p)); err != nil {
		return err
	}
	s.logger.Info("api key cleared", logger.String("provider", string(p)))
	return nil
}

// Resolve returns the first non-empty key of: explicit, stored, configured.
// An empty result is not an error.
func (s *Store) Resolve(ctx context.Context, p Provider, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}

	stored, ok, err := s.Get(ctx, p)
	if err != nil {
		return "", err
	}
	if ok && stored != "" {
		return stored, nil
	}

	cfg, ok := s.configured[p]
	if !ok || (cfg.File == "" && cfg.Value == "") {
		return "", nil
	}
	return secrets.Resolve(cfg.File, cfg.Value)
}

// RequireKey is Resolve that fails with a validation error when no key is found.
func (s *Store) RequireKey(ctx context.Context, p Provider, explicit string) (string, error) {
	key, err := s.Resolve(ctx, p, explicit)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.New(fmt.Errorf("an API key for %s is required", p)).
			Component("credentials").
			Category(errors.CategoryValidation).
			Context("provider", string(p)).
			Build()
	}
	return key, nil
}
