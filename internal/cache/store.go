// Package cache persists raw backend responses in SQLite so repeated page loads
// can skip the network and an unreachable backend can fall back to the last
// good copy.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS responses (
	key TEXT PRIMARY KEY,
	body BLOB NOT NULL,
	stored_at_ns INTEGER NOT NULL
);`

// Store is a key/value table of response bodies.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates (or reuses) the cache database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("cache db path is required")
	}
	// A relative path would be read as the URI authority of the DSN.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}
	path = abs
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	// modernc.org/sqlite understands URI parameters in a "file:" DSN.
	u := url.URL{Scheme: "file", Path: path}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u.RawQuery = q.Encode()

	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the body stored under key and when it was written.
func (s *Store) Get(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	var (
		body []byte
		ns   int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT body, stored_at_ns FROM responses WHERE key = ?`, key).Scan(&body, &ns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read cache %q: %w", key, err)
	}
	return body, time.Unix(0, ns), true, nil
}

// Put upserts body under key.
func (s *Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (key, body, stored_at_ns) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, stored_at_ns = excluded.stored_at_ns`,
		key, body, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("write cache %q: %w", key, err)
	}
	return nil
}

// Prune deletes entries older than maxAge and returns how many were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE stored_at_ns < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
