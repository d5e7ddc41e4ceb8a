package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

func TestPriceStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceStore(pool)

	points := []*domain.PricePoint{
		{AssetID: "pepe", Date: day(1), Price: 12, MarketCap: ptr(1e9)},
		{AssetID: "pepe", Date: day(0).Add(13 * time.Hour), Price: 10, Imputed: true, DaysImputed: 1},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByAsset(ctx, "pepe")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(day(0)))
	assert.True(t, got[0].Imputed)
	assert.Equal(t, 1, got[0].DaysImputed)
	assert.Nil(t, got[0].MarketCap)
	require.NotNil(t, got[1].MarketCap)
	assert.InDelta(t, 1e9, *got[1].MarketCap, 0.001)

	err = store.InsertBulk(ctx, []*domain.PricePoint{{AssetID: "pepe", Date: day(1), Price: 1}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
