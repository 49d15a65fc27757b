package migration

import (
	"context"
	"time"
)

// Migration is one versioned schema change read from a migration file.
type Migration struct {
	Version     string // numeric prefix of the file name, e.g. "001"
	Description string
	SQL         string
	FilePath    string
	Checksum    string // sha256 of SQL, hex encoded
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises the applied and pending migrations.
type Status struct {
	CurrentVersion    string
	PendingCount      int
	AppliedMigrations []AppliedMigration
	PendingMigrations []Migration
}

// FileScanner reads migration files.
type FileScanner interface {
	ScanMigrations() ([]Migration, error)
	ValidateFileName(filename string) error
}

// Executor applies migrations and tracks them in schema_migrations.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	// ExecuteMigration runs every statement of the migration and records it
	// in a single transaction.
	ExecuteMigration(ctx context.Context, migration Migration) (time.Duration, error)
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
