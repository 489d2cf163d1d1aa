package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/insider_watchlist_bot/data"
)

func newTestSQLiteKV(t *testing.T) *SQLKV {
	t.Helper()
	db, err := data.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLKV(db)
}

func TestSQLKV_GetMissingKey(t *testing.T) {
	kv := newTestSQLiteKV(t)

	_, err := kv.Get(context.Background(), "watchlist:1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLKV_SetOverwritesValue(t *testing.T) {
	kv := newTestSQLiteKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "watchlist:1", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, "watchlist:1", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := kv.Get(ctx, "watchlist:1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "second" {
		t.Errorf("Expected %q, got %q", "second", got)
	}
}

func TestSQLKV_Remove(t *testing.T) {
	kv := newTestSQLiteKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "watchlist:2", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Remove(ctx, "watchlist:2"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := kv.Remove(ctx, "watchlist:2"); err != nil {
		t.Errorf("Removing a missing key should not fail, got %v", err)
	}

	if _, err := kv.Get(ctx, "watchlist:2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Remove, got %v", err)
	}
}
