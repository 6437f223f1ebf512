// Package cache stores generated C++ keyed by a hash of the source,
// so unchanged files skip the compilation pipeline.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	hash       TEXT PRIMARY KEY,
	cpp        TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// Cache is a content-addressed store of compiled artifacts backed by
// a sqlite database under the project's .angel directory.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database for projectDir.
func Open(projectDir string) (*Cache, error) {
	dir := filepath.Join(projectDir, ".angel")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes a source text into its cache key.
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached C++ for a key, or "" when absent.
func (c *Cache) Lookup(key string) (string, error) {
	var cpp string
	err := c.db.QueryRow("SELECT cpp FROM artifacts WHERE hash = ?", key).Scan(&cpp)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache lookup: %w", err)
	}
	return cpp, nil
}

// Store records generated C++ under a key, replacing any prior entry.
func (c *Cache) Store(key, cpp string) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO artifacts (hash, cpp, created_at) VALUES (?, ?, ?)",
		key, cpp, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Clean drops every stored artifact.
func (c *Cache) Clean() error {
	_, err := c.db.Exec("DELETE FROM artifacts")
	return err
}
