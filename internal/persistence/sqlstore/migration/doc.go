// Package migration applies versioned SQL files to a database/sql handle.
//
// Files follow the {version}_{description}.sql convention and are read from
// an fs.FS, normally embedded. Applied versions are tracked in the
// schema_migrations table together with the file checksum.
//
//	manager := migration.NewManager(
//		migration.NewFileScanner(files, "migrations/sqlite"),
//		migration.NewSQLExecutor(db, nil),
//		logger,
//	)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
