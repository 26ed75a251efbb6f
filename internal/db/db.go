package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is the database file used when no path is configured.
const DefaultPath = "Grocerify_Database.db"

// TimeLayout is how timestamps are stored in TEXT columns.
const TimeLayout = "2006-01-02 15:04:05"

// schema only uses IF NOT EXISTS statements, so it runs on every Open.
//
//go:embed schema.sql
var schema string

// Open opens (or creates) the local SQLite file, applies connection pragmas and
// creates any missing tables. Any error here should abort startup.
//
// The returned handle is meant to live for the whole process; the caller closes it.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single writer process; one connection keeps shared-cache memory
	// databases and the file lock simple.
	d.SetMaxOpenConns(1)
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if err := applyPragmas(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := EnsureSchema(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// EnsureSchema creates the users and inventory tables if they are missing.
// Existing tables and rows are left alone.
func EnsureSchema(d *sql.DB) error {
	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func applyPragmas(d *sql.DB) error {
	// journal_mode is not supported for in-memory databases. Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	for _, p := range []string{`PRAGMA busy_timeout=5000`, `PRAGMA foreign_keys=ON`} {
		if _, err := d.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
