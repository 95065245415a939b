// Package cache is the compile-time build cache for peggen: it remembers
// the generated Go source for a grammar file keyed by the grammar's own
// content hash plus the compiler version, so re-running peggen on an
// unchanged grammar skips analysis, monomorphization, and emission
// entirely. Uses the same database/sql-over-blank-imported-sqlite-driver
// wiring as an in-language SQL builtin elsewhere in this codebase,
// narrowed from an open-ended SQL surface down to a fixed single-table
// store.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is a build cache backed by a single sqlite file. The zero value is
// not usable; construct one with Open.
type Cache struct {
	db *sql.DB
}

// Open creates (if needed) and opens the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	source     BLOB NOT NULL,
	generated  BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the cache key for a grammar source under the running peggen
// version: a version bump invalidates every prior entry without needing to
// touch the database file itself.
func Key(source, version string) string {
	h := sha256.New()
	h.Write([]byte(version))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Entry is one cache hit: the generated source and when it was stored.
type Entry struct {
	Generated []byte
	CreatedAt time.Time
}

// Lookup returns the cached generated source for key, if present.
func (c *Cache) Lookup(key string) (Entry, bool, error) {
	var generated []byte
	var createdAt int64
	err := c.db.QueryRow(
		`SELECT generated, created_at FROM entries WHERE key = ?`, key,
	).Scan(&generated, &createdAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: lookup: %w", err)
	}
	return Entry{Generated: generated, CreatedAt: time.Unix(createdAt, 0)}, true, nil
}

// Store records generated source under key, replacing any prior entry for
// the same key (a sha256 collision between distinct grammar sources under
// the same version is treated as impossible, not merely unlikely).
func (c *Cache) Store(key string, source, generated []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO entries (key, source, generated, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET source = excluded.source, generated = excluded.generated, created_at = excluded.created_at`,
		key, source, generated, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}
