package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "settlements.db"), filepath.Join(dir, "settlements.lock"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndList(t *testing.T) {
	store := openTestStore(t)
	rec := Record{
		ID:         "swap_test1",
		ChainID:    1,
		SellSymbol: "USDC",
		BuySymbol:  "WETH",
		SellAmount: "1.5",
		BuyAmount:  "0.0005",
		SwapTxHash: "0xabc",
		Status:     StatusSubmitted,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].ID != rec.ID || records[0].SwapTxHash != "0xabc" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestSaveUpdatesStatus(t *testing.T) {
	store := openTestStore(t)
	rec := Record{ID: "swap_test2", Status: StatusFailed, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	rec.Status = StatusSubmitted
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save update failed: %v", err)
	}
	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 || records[0].Status != StatusSubmitted {
		t.Fatalf("record not updated: %+v", records)
	}
}

func TestSaveRejectsMissingID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(Record{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}
