package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds connection settings for either backend.
type Config struct {
	// Driver selects the backend. Empty means detect from URL.
	Driver Driver

	// URL is the PostgreSQL connection string.
	URL string

	// SQLitePath is the database file for SQLite mode.
	// Defaults to ~/.timeboard/timeboard.db.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool size.
	MaxConns int
}

// Driver factories register themselves from their packages' init so the
// core package does not import both backends unconditionally.
var (
	newSQLiteConnection   func(ctx context.Context, cfg Config) (Connection, error)
	newPostgresConnection func(ctx context.Context, cfg Config) (Connection, error)
)

// RegisterSQLiteDriver installs the SQLite connection factory.
func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newSQLiteConnection = fn
}

// RegisterPostgresDriver installs the PostgreSQL connection factory.
func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newPostgresConnection = fn
}

// NewConnection opens a connection for the configured backend.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DetectDriver(cfg.URL)
	}

	switch driver {
	case DriverSQLite:
		if newSQLiteConnection == nil {
			return nil, fmt.Errorf("sqlite driver not registered")
		}
		return newSQLiteConnection(ctx, cfg)
	case DriverPostgres:
		if newPostgresConnection == nil {
			return nil, fmt.Errorf("postgres driver not registered")
		}
		return newPostgresConnection(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// DefaultSQLitePath returns the default local database location.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".timeboard", "timeboard.db")
}

// EnsureDirectory creates the parent directory for a file path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
