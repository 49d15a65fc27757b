// Package sqlstore implements the application repositories on database/sql.
// SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) share one set of
// queries; placeholders are rebound per driver.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/meatupclub/meatup/internal/persistence/sqlstore/migration"
)

//go:embed migrations
var migrationFiles embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store owns the connection pool shared by every repository.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	switch d.driver {
	case DriverSQLite:
		// SQLite allows one writer; a single connection serialises access
		// and keeps transactions from deadlocking on busy_timeout.
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	store := newStore(db, d, logger)
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return store, nil
}

// New wraps an existing handle.
func New(db *sql.DB, driver string, logger *slog.Logger) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return newStore(db, d, logger), nil
}

func newStore(db *sql.DB, d dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, dialect: d, logger: logger.With("component", "sqlstore", "driver", d.driver)}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the database/sql driver name.
func (s *Store) Driver() string {
	return s.dialect.driver
}

// Close closes the pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping tests the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded migrations for the store's driver.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewFileScanner(migrationFiles, "migrations/"+s.dialect.driver),
		migration.NewSQLExecutor(s.db, s.dialect.rebind),
		s.logger,
	)
	return manager.RunMigrations(ctx)
}

// TransactionFunc runs inside a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction commits when fn succeeds and rolls back otherwise.
func (s *Store) WithTransaction(ctx context.Context, fn TransactionFunc) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

// insert runs an INSERT and returns the generated id.
func (s *Store) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var id int64
	if err := s.queryRow(ctx, q, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execAffecting runs a statement and returns the number of rows it changed.
func (s *Store) execAffecting(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	result, err := s.exec(ctx, q, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
