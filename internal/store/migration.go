package store

import "fmt"

// MigrationKind is the direction of a migration.
type MigrationKind int

const (
	KindUp MigrationKind = iota
	KindDown
)

func (k MigrationKind) String() string {
	if k == KindDown {
		return "down"
	}
	return "up"
}

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	Kind        MigrationKind
	SQL         string
}

// Migrations is an ordered migration table. Up migrations are applied in
// the order they appear; the table is never re-sorted.
type Migrations []Migration

// Up returns the up migrations in table order.
func (ms Migrations) Up() []Migration {
	var up []Migration
	for _, m := range ms {
		if m.Kind == KindUp {
			up = append(up, m)
		}
	}
	return up
}

// Down returns the down migration for version, if there is one.
func (ms Migrations) Down(version int) (Migration, bool) {
	for _, m := range ms {
		if m.Kind == KindDown && m.Version == version {
			return m, true
		}
	}
	return Migration{}, false
}

// Latest returns the highest up version, or 0 for an empty table.
func (ms Migrations) Latest() int {
	latest := 0
	for _, m := range ms.Up() {
		if m.Version > latest {
			latest = m.Version
		}
	}
	return latest
}

// Validate checks that up versions are positive, unique and strictly
// ascending, and that every down migration pairs with an up migration.
func (ms Migrations) Validate() error {
	up := make(map[int]bool)
	down := make(map[int]bool)
	prev := 0
	for _, m := range ms {
		if m.Version <= 0 {
			return fmt.Errorf("%w: version %d must be positive", ErrInvalidMigrations, m.Version)
		}
		switch m.Kind {
		case KindUp:
			if up[m.Version] {
				return fmt.Errorf("%w: duplicate up version %d", ErrInvalidMigrations, m.Version)
			}
			if m.Version <= prev {
				return fmt.Errorf("%w: version %d follows %d", ErrInvalidMigrations, m.Version, prev)
			}
			up[m.Version] = true
			prev = m.Version
		case KindDown:
			if down[m.Version] {
				return fmt.Errorf("%w: duplicate down version %d", ErrInvalidMigrations, m.Version)
			}
			down[m.Version] = true
		default:
			return fmt.Errorf("%w: version %d has unknown kind %d", ErrInvalidMigrations, m.Version, m.Kind)
		}
	}
	for v := range down {
		if !up[v] {
			return fmt.Errorf("%w: down version %d has no up migration", ErrInvalidMigrations, v)
		}
	}
	return nil
}
