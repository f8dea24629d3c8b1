package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Store persists the last validated catalog snapshots so a cold start can
// render the previous tokens and prices before the first fetch lands.
// Snapshots are replaced wholesale, matching how the state layer applies
// fetch results.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

type Snapshot struct {
	Hit   bool
	Value []byte
	Age   time.Duration
	Stale bool
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"CREATE TABLE IF NOT EXISTS snapshots (key TEXT PRIMARY KEY, value BLOB NOT NULL, created_at INTEGER NOT NULL, ttl_seconds INTEGER NOT NULL);",
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init cache schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(key string) (Snapshot, error) {
	var value []byte
	var createdUnix int64
	var ttlSeconds int64
	err := s.db.QueryRow("SELECT value, created_at, ttl_seconds FROM snapshots WHERE key = ?", key).Scan(&value, &createdUnix, &ttlSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{Hit: false}, nil
		}
		return Snapshot{}, fmt.Errorf("cache read: %w", err)
	}

	age := time.Since(time.Unix(createdUnix, 0).UTC())
	if age < 0 {
		age = 0
	}
	return Snapshot{
		Hit:   true,
		Value: value,
		Age:   age,
		Stale: age > time.Duration(ttlSeconds)*time.Second,
	}, nil
}

func (s *Store) Put(key string, value []byte, ttl time.Duration) error {
	locked, err := s.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("lock cache: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock cache: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	ttlSeconds := int64(ttl.Seconds())
	if ttlSeconds <= 0 {
		ttlSeconds = 1
	}
	_, err = s.db.Exec(`
		INSERT INTO snapshots (key, value, created_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			created_at=excluded.created_at,
			ttl_seconds=excluded.ttl_seconds
	`, key, value, time.Now().UTC().Unix(), ttlSeconds)
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}
