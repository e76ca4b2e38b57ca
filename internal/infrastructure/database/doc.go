// Package database provides SQLite connectivity for Planteur Core.
//
// This package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Versioned schema migrations read from an fs.FS
//   - Health checks for the status API
//
// Migrations are additive: each file pair is named
// YYYYMMDD_HHMMSS_description.up.sql / .down.sql and runs in its own
// transaction. The production set is embedded by package migrations.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
