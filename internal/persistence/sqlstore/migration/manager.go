package migration

import (
	"context"
	"fmt"
	"log/slog"
)

// Manager applies pending migrations in version order.
type Manager struct {
	scanner  FileScanner
	executor Executor
	logger   *slog.Logger
}

// NewManager creates a Manager. A nil logger discards output.
func NewManager(scanner FileScanner, executor Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{scanner: scanner, executor: executor, logger: logger.With("component", "migration")}
}

// RunMigrations applies every pending migration. Applied migrations whose
// files changed since they ran abort the run with ErrChecksumMismatch.
func (m *Manager) RunMigrations(ctx context.Context) error {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "schema status",
		"current_version", status.CurrentVersion,
		"pending", status.PendingCount,
	)

	for i, migration := range status.PendingMigrations {
		m.logger.InfoContext(ctx, "applying migration",
			"version", migration.Version,
			"description", migration.Description,
			"position", i+1,
			"total", status.PendingCount,
		)
		elapsed, err := m.executor.ExecuteMigration(ctx, migration)
		if err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
		m.logger.InfoContext(ctx, "migration applied", "version", migration.Version, "duration", elapsed)
	}
	return nil
}

// Status compares the migration files with schema_migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	available, err := m.scanner.ScanMigrations()
	if err != nil {
		return Status{}, fmt.Errorf("failed to scan migrations: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get applied versions: %w", err)
	}

	byVersion := make(map[string]Migration, len(available))
	for _, migration := range available {
		byVersion[migration.Version] = migration
	}

	status := Status{AppliedMigrations: applied}
	appliedSet := make(map[string]bool, len(applied))
	for _, row := range applied {
		appliedSet[row.Version] = true
		file, ok := byVersion[row.Version]
		if !ok {
			return Status{}, fmt.Errorf("%w: applied migration %s not found in available migrations", ErrVersionConflict, row.Version)
		}
		if row.Checksum != "" && row.Checksum != file.Checksum {
			return Status{}, NewMigrationError(row.Version, file.FilePath, "verify checksum", ErrChecksumMismatch)
		}
		if versionNumber(row.Version) > versionNumber(status.CurrentVersion) {
			status.CurrentVersion = row.Version
		}
	}
	for _, migration := range available {
		if !appliedSet[migration.Version] {
			status.PendingMigrations = append(status.PendingMigrations, migration)
		}
	}
	status.PendingCount = len(status.PendingMigrations)
	return status, nil
}
