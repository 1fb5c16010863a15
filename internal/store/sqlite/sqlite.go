package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Kzeezee/Pomodoko/internal/logger"
	"github.com/Kzeezee/Pomodoko/internal/store"
)

// SQLiteStore implements the Store interface using modernc.org/sqlite.
type SQLiteStore struct {
	dbPath string
	db     *sqlx.DB
	log    logger.Logger

	// migrateMu rejects overlapping Migrate and Rollback runs.
	migrateMu sync.Mutex
}

var _ store.Store = (*SQLiteStore)(nil)

// New creates a new SQLiteStore. A nil log falls back to logger.Default.
func New(dbPath string, log logger.Logger) *SQLiteStore {
	if log == nil {
		log = logger.Default
	}
	return &SQLiteStore{
		dbPath: dbPath,
		log:    log,
	}
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Open opens the SQLite database with safe defaults, creating the file if
// it does not exist.
func (s *SQLiteStore) Open(ctx context.Context) error {
	db, err := sqlx.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", store.ErrStoreOpen, s.dbPath, err)
	}

	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("%w: pragma %q: %w", store.ErrStoreOpen, pragma, err)
		}
	}

	s.db = db
	s.log.Debug("opened database %s", s.dbPath)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// CheckState returns the current state of the datastore relative to the
// given migration table.
func (s *SQLiteStore) CheckState(ctx context.Context, migrations store.Migrations) (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, store.ErrNotOpen
	}

	exists, err := s.migrationTableExists(ctx)
	if err != nil {
		return store.StateUninitialized, err
	}
	if !exists {
		return store.StateUninitialized, nil
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return store.StateUninitialized, err
	}
	known := make(map[int]bool)
	for _, m := range migrations.Up() {
		known[m.Version] = true
		if !applied[m.Version] {
			return store.StateVersionMismatch, nil
		}
	}
	for v := range applied {
		if !known[v] {
			return store.StateVersionMismatch, nil
		}
	}

	return store.StateReady, nil
}

// GetSchemaVersion returns the highest applied migration version, or 0
// when nothing has been applied.
func (s *SQLiteStore) GetSchemaVersion(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, store.ErrNotOpen
	}

	exists, err := s.migrationTableExists(ctx)
	if err != nil || !exists {
		return 0, err
	}

	var version int
	err = s.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("failed to query schema version: %w", err)
	}

	return version, nil
}

func (s *SQLiteStore) migrationTableExists(ctx context.Context) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'`)
	if err != nil {
		return false, fmt.Errorf("failed to check schema_migrations table: %w", err)
	}
	return count > 0, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
