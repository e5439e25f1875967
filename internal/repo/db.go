// Package repo persists the notification center (pending requests, settings,
// categories) and the Idempotency-Key ledger through GORM on a pure-Go
// SQLite driver.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

type dbOptions struct {
	busyTimeout time.Duration
	maxConns    int
	logLevel    logger.LogLevel
	tracing     bool
}

// DBOption tunes OpenSQLite.
type DBOption func(*dbOptions)

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) DBOption { return func(o *dbOptions) { o.busyTimeout = d } }

// WithMaxConns caps open (and idle) pool connections.
func WithMaxConns(n int) DBOption { return func(o *dbOptions) { o.maxConns = n } }

// WithQueryLog sets the gorm logger level.
func WithQueryLog(l logger.LogLevel) DBOption { return func(o *dbOptions) { o.logLevel = l } }

// WithoutTracing skips the OpenTelemetry query plugin.
func WithoutTracing() DBOption { return func(o *dbOptions) { o.tracing = false } }

// OpenSQLite opens (or creates) the database file at path, applies the WAL
// pragmas and registers the tracing plugin so each query becomes a span.
// The parent directory must already exist.
func OpenSQLite(path string, opts ...DBOption) (*gorm.DB, error) {
	o := dbOptions{busyTimeout: 5 * time.Second, maxConns: 10, logLevel: logger.Warn, tracing: true}
	for _, fn := range opts {
		fn(&o)
	}

	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(o.logLevel),
	})
	if err != nil {
		return nil, err
	}
	if o.tracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, err
		}
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", o.busyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.maxConns)
	sqlDB.SetMaxIdleConns(o.maxConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// AutoMigrate creates or updates every table the server owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.NotificationRecord{},
		&domain.NotificationSettings{},
		&domain.CategoryRecord{},
		&domain.Idempotency{},
	)
}
