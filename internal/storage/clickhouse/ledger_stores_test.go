package clickhouse

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

func TestNetTransferStore_ReplaceAsset(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewNetTransferStore(conn)
	ctx := context.Background()

	raw := decimal.RequireFromString("-2000000000000000000")
	first := []*domain.NetTransferRecord{
		{AssetID: "pepe", Wallet: "0xb", Date: day(1), Source: "ethereum", Amount: raw},
		{AssetID: "pepe", Wallet: "0xa", Date: day(0), Source: "ethereum", Amount: raw.Neg()},
	}
	require.NoError(t, store.ReplaceAsset(ctx, "pepe", first))
	require.NoError(t, store.ReplaceAsset(ctx, "mog", []*domain.NetTransferRecord{
		{AssetID: "mog", Wallet: "0xa", Date: day(0), Source: "ethereum", Amount: decimal.NewFromInt(1)},
	}))

	got, err := store.GetByAsset(ctx, "pepe")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0xa", got[0].Wallet)
	assert.True(t, got[0].Date.Equal(day(0)))
	assert.True(t, raw.Neg().Equal(got[0].Amount))
	assert.True(t, raw.Equal(got[1].Amount))

	// A second replace swaps the whole partition and leaves other assets alone.
	require.NoError(t, store.ReplaceAsset(ctx, "pepe", first[:1]))
	got, err = store.GetByAsset(ctx, "pepe")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0xb", got[0].Wallet)

	other, err := store.GetByAsset(ctx, "mog")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	err = store.ReplaceAsset(ctx, "pepe", []*domain.NetTransferRecord{{AssetID: "mog"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestBalanceStore_ReplaceAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBalanceStore(conn)
	ctx := context.Background()

	records := []*domain.BalanceRecord{
		{AssetID: "pepe", Wallet: "0xa", Date: day(0), NetTransfers: decimal.NewFromInt(2), Balance: decimal.NewFromInt(2), TransferSequence: 1},
		{AssetID: "pepe", Wallet: "0xa", Date: day(1), NetTransfers: decimal.NewFromInt(-1), Balance: decimal.NewFromInt(1), TransferSequence: 2},
		{AssetID: "pepe", Wallet: "0xb", Date: day(1), NetTransfers: decimal.NewFromInt(1), Balance: decimal.NewFromInt(1), TransferSequence: 1},
	}
	require.NoError(t, store.ReplaceAsset(ctx, "pepe", records))

	all, err := store.GetByAsset(ctx, "pepe")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	wallet, err := store.GetByWallet(ctx, "pepe", "0xa")
	require.NoError(t, err)
	require.Len(t, wallet, 2)
	assert.Equal(t, int64(1), wallet[0].TransferSequence)
	assert.Equal(t, int64(2), wallet[1].TransferSequence)
	assert.True(t, decimal.NewFromInt(1).Equal(wallet[1].Balance))

	require.NoError(t, store.ReplaceAsset(ctx, "pepe", nil))
	all, err = store.GetByAsset(ctx, "pepe")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProfitStore_ReplaceAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewProfitStore(conn)
	ctx := context.Background()

	records := []*domain.ProfitRecord{
		{AssetID: "pepe", Wallet: "0xa", Date: day(0), TransferSequence: 1, Price: 10, NetTransferTokens: 2, BalanceTokens: 2,
			UsdNetTransfers: 20, UsdBalance: 20, UsdInflows: 20, UsdInflowsCumulative: 20, TotalReturn: ptr(0.0), Imputed: true},
		{AssetID: "pepe", Wallet: "0xa", Date: day(1), TransferSequence: 2, Price: 12, NetTransferTokens: -1, BalanceTokens: 1,
			UsdNetTransfers: -12, UsdBalance: 12, ProfitsChange: 4, ProfitsCumulative: 4, UsdInflowsCumulative: 20, TotalReturn: ptr(0.2)},
	}
	require.NoError(t, store.ReplaceAsset(ctx, "pepe", records))

	got, err := store.GetByWallet(ctx, "pepe", "0xa")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Imputed)
	assert.Equal(t, 12.0, got[1].UsdBalance)
	assert.Equal(t, 4.0, got[1].ProfitsChange)
	require.NotNil(t, got[1].TotalReturn)
	assert.InDelta(t, 0.2, *got[1].TotalReturn, 1e-12)

	byAsset, err := store.GetByAsset(ctx, "pepe")
	require.NoError(t, err)
	assert.Len(t, byAsset, 2)
}
