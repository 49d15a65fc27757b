package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const appliedAtLayout = "2006-01-02T15:04:05.000000000Z"

// SQLExecutor applies migrations through database/sql. Rebind converts the
// "?" placeholders of its bookkeeping queries for the target driver.
type SQLExecutor struct {
	db     *sql.DB
	rebind func(string) string
	now    func() time.Time
}

// NewSQLExecutor creates an executor. rebind may be nil for drivers that
// accept "?" placeholders.
func NewSQLExecutor(db *sql.DB, rebind func(string) string) *SQLExecutor {
	if rebind == nil {
		rebind = func(query string) string { return query }
	}
	return &SQLExecutor{db: db, rebind: rebind, now: time.Now}
}

// InitializeVersionTable creates schema_migrations when missing.
func (e *SQLExecutor) InitializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms BIGINT
		)`
	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return NewDatabaseError("", createTableSQL, "create schema_migrations table", err)
	}
	return nil
}

// ExecuteMigration runs the migration statements and records the version in
// one transaction, so a failed migration leaves no trace.
func (e *SQLExecutor) ExecuteMigration(ctx context.Context, migration Migration) (elapsed time.Duration, err error) {
	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return 0, NewMigrationError(migration.Version, migration.FilePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	start := e.now()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, NewDatabaseError(migration.Version, "", "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback error: %v)", err, rbErr)
			}
		}
	}()

	for i, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			err = NewDatabaseError(migration.Version, stmt, fmt.Sprintf("execute statement %d", i+1), err)
			return 0, err
		}
	}

	elapsed = e.now().Sub(start)
	insertSQL := e.rebind(`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`)
	if _, err = tx.ExecContext(ctx, insertSQL,
		migration.Version,
		e.now().UTC().Format(appliedAtLayout),
		migration.Checksum,
		elapsed.Milliseconds(),
	); err != nil {
		err = NewDatabaseError(migration.Version, insertSQL, "record migration", err)
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		err = NewDatabaseError(migration.Version, "", "commit transaction", err)
		return 0, err
	}
	return elapsed, nil
}

// GetAppliedVersions lists schema_migrations ordered by version.
func (e *SQLExecutor) GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	const querySQL = `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0), COALESCE(checksum, '')
		FROM schema_migrations
		ORDER BY version ASC`

	rows, err := e.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, NewDatabaseError("", querySQL, "get applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			row       AppliedMigration
			appliedAt string
			elapsedMs int64
		)
		if err := rows.Scan(&row.Version, &appliedAt, &elapsedMs, &row.Checksum); err != nil {
			return nil, NewDatabaseError("", querySQL, "scan applied migration", err)
		}
		row.AppliedAt, _ = time.Parse(appliedAtLayout, appliedAt)
		row.ExecutionTime = time.Duration(elapsedMs) * time.Millisecond
		applied = append(applied, row)
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("", querySQL, "iterate applied migrations", err)
	}
	return applied, nil
}
