package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/logger"
)

// slowQueryThreshold marks statements worth a warning.
const slowQueryThreshold = 200 * time.Millisecond

// kvEntry is one row of the kv_entries table.
type kvEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// SQLStore keeps values in a SQL database through GORM.
type SQLStore struct {
	DB      *gorm.DB
	dialect string
}

// OpenSQLite opens or creates the sqlite database at path.
func OpenSQLite(path string, log logger.Logger) (*SQLStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.New(fmt.Errorf("failed to create database directory: %w", err)).
					Component("kvstore").
					Category(errors.CategoryFileIO).
					Context("path", path).
					Build()
			}
		}
	}

	store, err := openGorm(sqlite.Open(path), BackendSQLite, log)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer
	sqlDB, err := store.DB.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return store, nil
}

// OpenMySQL connects to MySQL. The DSN should include parseTime=true.
func OpenMySQL(dsn string, log logger.Logger) (*SQLStore, error) {
	return openGorm(mysql.Open(dsn), BackendMySQL, log)
}

// OpenPostgres connects to PostgreSQL.
func OpenPostgres(dsn string, log logger.Logger) (*SQLStore, error) {
	return openGorm(postgres.Open(dsn), BackendPostgres, log)
}

func openGorm(dialector gorm.Dialector, dialect string, log logger.Logger) (*SQLStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, slowQueryThreshold),
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open %s database: %w", dialect, err)).
			Component("kvstore").
			Category(errors.CategoryDatabase).
			Context("dialect", dialect).
			Build()
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, errors.New(fmt.Errorf("failed to migrate %s database: %w", dialect, err)).
			Component("kvstore").
			Category(errors.CategoryDatabase).
			Context("dialect", dialect).
			Build()
	}

	log.Info("key-value store ready", logger.String("dialect", dialect))
	return &SQLStore{DB: db, dialect: dialect}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var entry kvEntry
	err := s.DB.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", storeError(err, "get", key)
	}
	return entry.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return storeError(err, "set", key)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := s.DB.WithContext(ctx).Where("entry_key = ?", key).Delete(&kvEntry{}).Error; err != nil {
		return storeError(err, "delete", key)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return storeError(err, "close", s.dialect)
	}
	return sqlDB.Close()
}
