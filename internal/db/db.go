package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DataDirEnv overrides the default data directory when set
const DataDirEnv = "TICKLIST_DATA_DIR"

// DB holds preferences and status history. The TUI and one-shot CLI
// commands may have it open at the same time.
type DB struct {
	*sql.DB
	provider *goose.Provider
}

// DefaultDataDir returns the data directory, honouring TICKLIST_DATA_DIR
func DefaultDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ticklist"
	}
	return filepath.Join(home, ".local", "share", "ticklist")
}

// DefaultDBPath returns the database file inside DefaultDataDir
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "ticklist.db")
}

// dsn builds the connection string. Writers take the lock when the
// transaction begins (_txlock=immediate), so a CLI write next to the TUI
// waits on busy_timeout instead of failing mid-transaction.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)
}

// Open opens the database at dbPath and brings its schema up to date
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB}
	if err := db.migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies the embedded migrations. The provider keeps goose's
// state per connection and logs nothing, so no output reaches the TUI.
func (db *DB) migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, sub,
		goose.WithLogger(goose.NopLogger()))
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	db.provider = provider
	return nil
}

// SchemaVersion returns the version of the newest applied migration
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	return db.provider.GetDBVersion(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes fn within a transaction, rolling back if it fails
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
