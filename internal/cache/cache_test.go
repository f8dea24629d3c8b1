package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "catalog.db"), filepath.Join(dir, "catalog.lock"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("tokens", []byte(`[{"symbol":"USDC"}]`), time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	snap, err := store.Get("tokens")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !snap.Hit || string(snap.Value) != `[{"symbol":"USDC"}]` {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Stale {
		t.Fatal("fresh snapshot must not be stale")
	}
}

func TestSnapshotMiss(t *testing.T) {
	store := openTestStore(t)
	snap, err := store.Get("absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.Hit {
		t.Fatal("expected a miss")
	}
}

func TestSnapshotReplacedWholesale(t *testing.T) {
	store := openTestStore(t)
	if err := store.Put("tokens", []byte("old"), time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put("tokens", []byte("new"), time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	snap, err := store.Get("tokens")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(snap.Value) != "new" {
		t.Fatalf("snapshot not replaced: %q", snap.Value)
	}
}
