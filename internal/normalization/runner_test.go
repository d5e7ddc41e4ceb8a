package normalization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage/memory"
)

func TestRunner_NormalizeAsset(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransferEventStore()

	// Inserted out of order; the runner sorts before grouping.
	require.NoError(t, store.InsertBulk(ctx, []*domain.TransferEvent{
		ev("0x02", 0, day2, walletA, walletB, 40),
		ev("0x01", 0, day1, "", walletA, 100),
	}))

	other := ev("0x01", 0, day1, "", walletB, 7)
	other.Source = "ethereum"
	require.NoError(t, store.InsertBulk(ctx, []*domain.TransferEvent{other}))

	runner := NewRunner(store, nil)
	res, err := runner.NormalizeAsset(ctx, "dune", testAsset())
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Equal(t, 2, res.Events)
	for _, r := range res.Records {
		assert.Equal(t, "dune", r.Source)
	}
}

func TestRunner_SkippedAsset(t *testing.T) {
	ctx := context.Background()
	asset := testAsset()
	asset.Decimals = nil

	_, err := NewRunner(memory.NewTransferEventStore(), nil).NormalizeAsset(ctx, "dune", asset)
	assert.ErrorIs(t, err, domain.ErrSkippedAsset)
}
