package migration

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestScanMigrations(t *testing.T) {
	tests := []struct {
		name          string
		files         fstest.MapFS
		expectedOrder []string
		errIs         error
	}{
		{
			name: "sorted by numeric version",
			files: fstest.MapFS{
				"m/005_add_indexes.sql":    {Data: []byte("CREATE INDEX a ON t(x);")},
				"m/001_initial_schema.sql": {Data: []byte("CREATE TABLE t (x TEXT);")},
				"m/README.md":              {Data: []byte("# notes")},
			},
			expectedOrder: []string{"001", "005"},
		},
		{
			name: "invalid file name",
			files: fstest.MapFS{
				"m/initial.sql": {Data: []byte("CREATE TABLE t (x TEXT);")},
			},
			errIs: ErrInvalidMigrationFile,
		},
		{
			name: "hyphen after version",
			files: fstest.MapFS{
				"m/001-x.sql": {Data: []byte("CREATE TABLE d (x TEXT);")},
			},
			errIs: ErrInvalidMigrationFile,
		},
		{
			name: "comment only file",
			files: fstest.MapFS{
				"m/001_empty.sql": {Data: []byte("-- nothing here\n")},
			},
			errIs: ErrInvalidMigrationFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			migrations, err := NewFileScanner(tc.files, "m").ScanMigrations()
			if tc.errIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			versions := make([]string, 0, len(migrations))
			for _, m := range migrations {
				versions = append(versions, m.Version)
			}
			assert.Equal(t, tc.expectedOrder, versions)
		})
	}
}

func TestScanMigrationsDuplicateVersion(t *testing.T) {
	files := fstest.MapFS{
		"m/001_users.sql": {Data: []byte("CREATE TABLE users (id TEXT);")},
		"m/001_rooms.sql": {Data: []byte("CREATE TABLE rooms (id TEXT);")},
	}
	_, err := NewFileScanner(files, "m").ScanMigrations()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateVersion))
}

func TestScanMigrationsDescription(t *testing.T) {
	files := fstest.MapFS{
		"m/001_initial_schema.sql": {Data: []byte("-- Description: members and events\nCREATE TABLE t (x TEXT);")},
		"m/002_add_index.sql":      {Data: []byte("CREATE INDEX i ON t(x);")},
	}
	migrations, err := NewFileScanner(files, "m").ScanMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "members and events", migrations[0].Description)
	assert.Equal(t, "add index", migrations[1].Description)
	assert.Len(t, migrations[0].Checksum, 64)
}

func TestRunMigrationsAppliesOnce(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	files := fstest.MapFS{
		"m/001_members.sql": {Data: []byte("CREATE TABLE members (id INTEGER PRIMARY KEY, email TEXT NOT NULL);\nCREATE UNIQUE INDEX members_email ON members(email);")},
		"m/002_events.sql":  {Data: []byte("CREATE TABLE events (id INTEGER PRIMARY KEY);")},
	}
	manager := NewManager(NewFileScanner(files, "m"), NewSQLExecutor(db, nil), nil)

	require.NoError(t, manager.RunMigrations(ctx))
	require.NoError(t, manager.RunMigrations(ctx))

	status, err := manager.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "002", status.CurrentVersion)
	assert.Zero(t, status.PendingCount)
	require.Len(t, status.AppliedMigrations, 2)
	assert.NotEmpty(t, status.AppliedMigrations[0].Checksum)

	_, err = db.ExecContext(ctx, "INSERT INTO members (email) VALUES ('a@example.com')")
	require.NoError(t, err)
}

func TestRunMigrationsRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	files := fstest.MapFS{
		"m/001_ok.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER PRIMARY KEY);")},
		"m/002_broken.sql": {Data: []byte("CREATE TABLE half (id INTEGER);\nCREATE TABLE ok (id INTEGER);")},
	}
	manager := NewManager(NewFileScanner(files, "m"), NewSQLExecutor(db, nil), nil)

	err := manager.RunMigrations(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationFailed)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'half'").Scan(&count))
	assert.Zero(t, count)

	status, err := manager.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "001", status.CurrentVersion)
	assert.Equal(t, 1, status.PendingCount)
}

func TestRunMigrationsDetectsChangedFile(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	original := fstest.MapFS{"m/001_init.sql": {Data: []byte("CREATE TABLE t (id INTEGER);")}}
	require.NoError(t, NewManager(NewFileScanner(original, "m"), NewSQLExecutor(db, nil), nil).RunMigrations(ctx))

	edited := fstest.MapFS{"m/001_init.sql": {Data: []byte("CREATE TABLE t (id INTEGER, name TEXT);")}}
	err := NewManager(NewFileScanner(edited, "m"), NewSQLExecutor(db, nil), nil).RunMigrations(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestRunMigrationsMissingFile(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	files := fstest.MapFS{
		"m/001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"m/002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
	}
	require.NoError(t, NewManager(NewFileScanner(files, "m"), NewSQLExecutor(db, nil), nil).RunMigrations(ctx))

	delete(files, "m/002_b.sql")
	err := NewManager(NewFileScanner(files, "m"), NewSQLExecutor(db, nil), nil).RunMigrations(ctx)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (x TEXT);\n\n-- note\nCREATE TABLE b (y TEXT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x TEXT)", "CREATE TABLE b (y TEXT)"}, stmts)
}
