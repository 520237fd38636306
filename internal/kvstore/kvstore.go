// Package kvstore persists small string values under fixed keys.
//
// It backs everything the application remembers between runs: the menu
// history, provider API keys and UI preferences. Values are opaque strings;
// callers own the encoding.
package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/menumaker/menumaker/internal/conf"
	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/logger"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.NewStd("kvstore: key not found")

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Open creates the store selected by settings.Backend.
func Open(ctx context.Context, settings *conf.StorageSettings, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	log = log.Module("kvstore")

	backend := strings.ToLower(strings.TrimSpace(settings.Backend))
	log.Debug("opening key-value store", logger.String("backend", backend))

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return OpenSQLite(settings.SQLite.Path, log)
	case BackendMySQL:
		return OpenMySQL(settings.MySQL.DSN, log)
	case BackendPostgres:
		return OpenPostgres(settings.Postgres.DSN, log)
	case BackendRedis:
		return OpenRedis(ctx, &settings.Redis)
	default:
		return nil, errors.New(fmt.Errorf("unknown storage backend %q", settings.Backend)).
			Component("kvstore").
			Category(errors.CategoryConfiguration).
			Context("backend", settings.Backend).
			Build()
	}
}

func storeError(err error, op, key string) error {
	return errors.New(fmt.Errorf("kvstore %s %q: %w", op, key, err)).
		Component("kvstore").
		Category(errors.CategoryDatabase).
		Context("operation", op).
		Build()
}
