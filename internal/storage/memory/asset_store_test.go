package memory

import (
	"context"
	"errors"
	"testing"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

func intPtr(v int) *int { return &v }

func TestAssetStore_InsertNormalizesAddress(t *testing.T) {
	store := NewAssetStore()
	ctx := context.Background()

	a := &domain.Asset{AssetID: "pepe", Chain: "Ethereum", Address: "0x6982508145454Ce325dDbE47a25d4ec3d2311933", Decimals: intPtr(18)}
	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByAddress(ctx, "ethereum", "0x6982508145454ce325ddbe47a25d4ec3d2311933")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if got.Address != "0x6982508145454ce325ddbe47a25d4ec3d2311933" {
		t.Errorf("Expected lower-cased address, got %s", got.Address)
	}
	if got.Chain != "ethereum" {
		t.Errorf("Expected chain ethereum, got %s", got.Chain)
	}
}

func TestAssetStore_DuplicateAddressDifferentCase(t *testing.T) {
	store := NewAssetStore()
	ctx := context.Background()

	_ = store.Insert(ctx, &domain.Asset{AssetID: "a1", Chain: "ethereum", Address: "0xABC"})
	err := store.Insert(ctx, &domain.Asset{AssetID: "a2", Chain: "ethereum", Address: "0xabc"})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same address on a case-sensitive chain is a distinct identity.
	if err := store.Insert(ctx, &domain.Asset{AssetID: "s1", Chain: "solana", Address: "AbC"}); err != nil {
		t.Fatalf("Insert s1 failed: %v", err)
	}
	if err := store.Insert(ctx, &domain.Asset{AssetID: "s2", Chain: "solana", Address: "abc"}); err != nil {
		t.Errorf("Expected distinct Solana addresses to insert, got %v", err)
	}
}

func TestAssetStore_GetAllSortedAndCopied(t *testing.T) {
	store := NewAssetStore()
	ctx := context.Background()

	_ = store.Insert(ctx, &domain.Asset{AssetID: "b", Chain: "base", Address: "0x2"})
	_ = store.Insert(ctx, &domain.Asset{AssetID: "a", Chain: "base", Address: "0x1"})

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 2 || all[0].AssetID != "a" || all[1].AssetID != "b" {
		t.Fatalf("Unexpected order: %+v", all)
	}

	all[0].Symbol = "MUTATED"
	again, _ := store.GetByID(ctx, "a")
	if again.Symbol == "MUTATED" {
		t.Error("GetAll must return copies")
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
