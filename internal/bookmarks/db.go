package bookmarks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

const schema = `CREATE TABLE IF NOT EXISTS bookmarks (
	id INTEGER PRIMARY KEY,
	URL TEXT NOT NULL UNIQUE,
	metadata TEXT DEFAULT '',
	tags TEXT DEFAULT ',',
	desc TEXT DEFAULT '',
	flags INTEGER DEFAULT 0
)`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA synchronous=NORMAL",
}

// OpenDB opens the bookmark database at path, creating the parent directory
// and the table when missing. A leading ~ is expanded.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if path != Memory {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand bookmark db path %q: %w", path, err)
		}
		path = expanded
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create bookmark db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == Memory {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bookmarks table: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
