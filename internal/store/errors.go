package store

import "errors"

var (
	// ErrMigrationApply is returned when a migration statement fails to execute.
	// The failing version is never recorded as applied.
	ErrMigrationApply = errors.New("migration apply failed")

	// ErrVersionSkew is returned when the database records a schema version
	// newer than any migration known to the running binary.
	ErrVersionSkew = errors.New("schema version skew")

	// ErrInvalidMigrations is returned when the migration table is malformed.
	ErrInvalidMigrations = errors.New("invalid migration table")

	// ErrMigrationInProgress is returned when a second migration run is
	// started on a store instance that is already migrating.
	ErrMigrationInProgress = errors.New("migration already in progress")

	// ErrStoreOpen is returned when a backing file cannot be opened or created.
	ErrStoreOpen = errors.New("store open failed")

	// ErrPersistenceWrite is returned when a write cannot be flushed to disk.
	ErrPersistenceWrite = errors.New("persistence write failed")

	// ErrNotOpen is returned when the database is used before Open.
	ErrNotOpen = errors.New("database not opened")

	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")
)
