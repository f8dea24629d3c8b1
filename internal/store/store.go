package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Record is one settlement attempt: the pair, the amounts, and whatever
// transactions were actually submitted.
type Record struct {
	ID             string `json:"id"`
	ChainID        int64  `json:"chain_id"`
	SellSymbol     string `json:"sell_symbol"`
	BuySymbol      string `json:"buy_symbol"`
	SellAmount     string `json:"sell_amount"`
	BuyAmount      string `json:"buy_amount"`
	ApprovalTxHash string `json:"approval_tx_hash,omitempty"`
	SwapTxHash     string `json:"swap_tx_hash,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// Store persists settlement records in sqlite.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open settlement sqlite: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS settlements (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_settlements_created ON settlements(created_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init settlement schema: %w", err)
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

func (s *Store) Save(rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("save settlement: missing id")
	}
	locked, err := s.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("lock settlement store: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock settlement store: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal settlement record: %w", err)
	}
	created, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		created = time.Now().UTC()
	}
	_, err = s.db.Exec(`
		INSERT INTO settlements (id, status, created_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			payload=excluded.payload
	`, rec.ID, rec.Status, created.Unix(), payload)
	if err != nil {
		return fmt.Errorf("settlement write: %w", err)
	}
	return nil
}

func (s *Store) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query("SELECT payload FROM settlements ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("settlement read: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("settlement scan: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal settlement record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
