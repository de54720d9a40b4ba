// Package database provides the SQLite connection used for the alarm event
// history.
//
// Open applies WAL mode and a busy timeout, limits the pool to a single
// connection and verifies connectivity. Migrate applies the versioned SQL
// files from an fs.FS, normally the embedded migrations package:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql. Each one runs in its own transaction.
package database
