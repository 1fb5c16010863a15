package sqlite

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Kzeezee/Pomodoko/internal/store"
)

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version     int    `db:"version"`
	Description string `db:"description"`
	AppliedAt   int64  `db:"applied_at"`
}

// MigrationStatus describes one known or recorded migration version.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
	AppliedAt   *time.Time
	// Unknown is set for versions recorded in the database that the
	// running binary does not know about.
	Unknown bool
}

// Migrate applies every up migration whose version is not yet recorded,
// in table order. Each migration runs in its own transaction together with
// the insert of its version row, so a failing statement is never marked
// as applied. The run aborts at the first failure.
//
// Migrate refuses to run when the database records a version newer than
// the newest migration in the table.
func (s *SQLiteStore) Migrate(ctx context.Context, migrations store.Migrations) (int, error) {
	if s.db == nil {
		return 0, store.ErrNotOpen
	}
	if !s.migrateMu.TryLock() {
		return 0, store.ErrMigrationInProgress
	}
	defer s.migrateMu.Unlock()

	if err := migrations.Validate(); err != nil {
		return 0, err
	}

	if _, err := s.db.ExecContext(ctx, migrationTableSchema); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	current, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return 0, err
	}
	if latest := migrations.Latest(); current > latest {
		s.log.Error("database schema version %d is newer than this build supports (%d)", current, latest)
		return 0, fmt.Errorf("%w: database is at version %d, newest known migration is %d", store.ErrVersionSkew, current, latest)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range migrations.Up() {
		if applied[m.Version] {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			s.log.Error("migration %d (%s) failed: %v", m.Version, m.Description, err)
			return count, fmt.Errorf("%w: version %d (%s): %w", store.ErrMigrationApply, m.Version, m.Description, err)
		}
		s.log.Info("applied migration %d (%s)", m.Version, m.Description)
		count++
	}

	if count == 0 {
		s.log.Debug("schema is up to date at version %d", current)
	}
	return count, nil
}

// Rollback applies down migrations for every applied version above target,
// newest first, removing each version row in the same transaction.
func (s *SQLiteStore) Rollback(ctx context.Context, migrations store.Migrations, target int) (int, error) {
	if s.db == nil {
		return 0, store.ErrNotOpen
	}
	if target < 0 {
		return 0, fmt.Errorf("rollback target %d must not be negative", target)
	}
	if !s.migrateMu.TryLock() {
		return 0, store.ErrMigrationInProgress
	}
	defer s.migrateMu.Unlock()

	if err := migrations.Validate(); err != nil {
		return 0, err
	}

	exists, err := s.migrationTableExists(ctx)
	if err != nil || !exists {
		return 0, err
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return 0, err
	}
	var versions []int
	for v := range applied {
		if v > target {
			versions = append(versions, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))

	count := 0
	for _, v := range versions {
		m, ok := migrations.Down(v)
		if !ok {
			return count, fmt.Errorf("%w: no down migration for version %d", store.ErrMigrationApply, v)
		}
		if err := s.revertMigration(ctx, m); err != nil {
			s.log.Error("rollback of migration %d (%s) failed: %v", m.Version, m.Description, err)
			return count, fmt.Errorf("%w: reverting version %d (%s): %w", store.ErrMigrationApply, m.Version, m.Description, err)
		}
		s.log.Info("reverted migration %d (%s)", m.Version, m.Description)
		count++
	}
	return count, nil
}

// AppliedMigrations returns the recorded migrations in version order.
func (s *SQLiteStore) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	if s.db == nil {
		return nil, store.ErrNotOpen
	}
	exists, err := s.migrationTableExists(ctx)
	if err != nil || !exists {
		return nil, err
	}

	var rows []AppliedMigration
	err = s.db.SelectContext(ctx, &rows, `SELECT version, description, applied_at FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return rows, nil
}

// Status merges the migration table with the recorded versions.
func (s *SQLiteStore) Status(ctx context.Context, migrations store.Migrations) ([]MigrationStatus, error) {
	applied, err := s.AppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	byVersion := make(map[int]AppliedMigration, len(applied))
	for _, a := range applied {
		byVersion[a.Version] = a
	}

	var out []MigrationStatus
	known := make(map[int]bool)
	for _, m := range migrations.Up() {
		known[m.Version] = true
		st := MigrationStatus{Version: m.Version, Description: m.Description}
		if a, ok := byVersion[m.Version]; ok {
			at := time.Unix(a.AppliedAt, 0)
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	for _, a := range applied {
		if known[a.Version] {
			continue
		}
		at := time.Unix(a.AppliedAt, 0)
		out = append(out, MigrationStatus{
			Version:     a.Version,
			Description: a.Description,
			Applied:     true,
			AppliedAt:   &at,
			Unknown:     true,
		})
	}
	return out, nil
}

func (s *SQLiteStore) applyMigration(ctx context.Context, m store.Migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) revertMigration(ctx context.Context, m store.Migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to execute down migration SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, m.Version); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) appliedVersions(ctx context.Context) (map[int]bool, error) {
	var versions []int
	if err := s.db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}
