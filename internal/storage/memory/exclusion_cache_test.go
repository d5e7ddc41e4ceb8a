package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

func TestExclusionCache_TTL(t *testing.T) {
	cache := NewExclusionCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	set := domain.NewExclusionSet(map[string]string{"usdc": "category:stablecoins"})
	if err := cache.Put(ctx, "fp", set, time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := cache.Get(ctx, "fp")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Contains("usdc") {
		t.Error("Expected cached set to contain usdc")
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.Get(ctx, "fp"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after expiry, got %v", err)
	}
}

func TestPartitionStateStore_GetSet(t *testing.T) {
	store := NewPartitionStateStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "pepe"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, &storage.PartitionState{AssetID: "pepe", RunID: "r1", InputFingerprint: "f1"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := store.Get(ctx, "pepe")
	if err != nil || got.InputFingerprint != "f1" {
		t.Errorf("Unexpected state %+v, err %v", got, err)
	}
}
