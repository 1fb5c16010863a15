package store

import "context"

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing         StoreState = iota // File doesn't exist
	StateUninitialized                     // File exists but no schema
	StateVersionMismatch                   // Schema exists but behind or ahead of the binary
	StateReady                             // Initialized and correct version
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version-mismatch"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Store defines the Pomodoko datastore contract.
// Implementations must be safe for concurrent use, except that Migrate
// may only run once at a time per instance.
type Store interface {
	// Open opens the datastore connection
	Open(ctx context.Context) error

	// Close closes the datastore connection
	Close() error

	// Migrate applies every pending up migration and returns how many ran
	Migrate(ctx context.Context, migrations Migrations) (int, error)

	// CheckState returns the current state of the datastore
	CheckState(ctx context.Context, migrations Migrations) (StoreState, error)

	// GetSchemaVersion returns the highest applied migration version
	GetSchemaVersion(ctx context.Context) (int, error)
}
