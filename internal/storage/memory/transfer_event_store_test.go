package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

func TestTransferEventStore_InsertBulkAndGet(t *testing.T) {
	store := NewTransferEventStore()
	ctx := context.Background()

	events := []*domain.TransferEvent{
		{AssetID: "pepe", Source: "dune", TxHash: "0x2", LogIndex: 0, TimestampMs: 2000, Sender: "0xa", Receiver: "0xb", Amount: decimal.NewFromInt(5)},
		{AssetID: "pepe", Source: "dune", TxHash: "0x1", LogIndex: 1, TimestampMs: 1000, Sender: "0xa", Receiver: "0xb", Amount: decimal.NewFromInt(3)},
		{AssetID: "pepe", Source: "ethereum", TxHash: "0x1", LogIndex: 1, TimestampMs: 1000, Sender: "0xa", Receiver: "0xb", Amount: decimal.NewFromInt(3)},
		{AssetID: "doge", Source: "dune", TxHash: "0x9", LogIndex: 0, TimestampMs: 1000, Sender: "0xa", Receiver: "0xb", Amount: decimal.NewFromInt(1)},
	}
	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByAsset(ctx, "dune", "pepe")
	if err != nil {
		t.Fatalf("GetByAsset failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	if got[0].TxHash != "0x1" {
		t.Errorf("Expected events ordered by timestamp, got first %s", got[0].TxHash)
	}

	ids, _ := store.ListAssets(ctx, "dune")
	if len(ids) != 2 || ids[0] != "doge" || ids[1] != "pepe" {
		t.Errorf("Unexpected ListAssets result: %v", ids)
	}
}

func TestTransferEventStore_DuplicateRollsBackBatch(t *testing.T) {
	store := NewTransferEventStore()
	ctx := context.Background()

	e := &domain.TransferEvent{AssetID: "pepe", Source: "dune", TxHash: "0x1", Amount: decimal.NewFromInt(1)}
	err := store.InsertBulk(ctx, []*domain.TransferEvent{e, e})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetByAsset(ctx, "dune", "pepe")
	if len(got) != 0 {
		t.Errorf("Expected 0 events after rollback, got %d", len(got))
	}

	err = store.InsertBulk(ctx, []*domain.TransferEvent{{AssetID: "pepe"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
