package accrual

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-wallet-ledger/internal/domain"
)

func screenAsset(supply float64) *domain.Asset {
	decimals := 2
	return &domain.Asset{AssetID: "pepe", Chain: "ethereum", Decimals: &decimals, TotalSupply: &supply}
}

func balancesOf(wallet string, raws ...int64) []*domain.BalanceRecord {
	out := make([]*domain.BalanceRecord, 0, len(raws))
	for i, r := range raws {
		out = append(out, &domain.BalanceRecord{
			AssetID:          "pepe",
			Wallet:           wallet,
			Date:             day0.AddDate(0, 0, i),
			Balance:          decimal.NewFromInt(r),
			TransferSequence: int64(i + 1),
		})
	}
	return out
}

func TestScreen_NegativeAndOverageWallets(t *testing.T) {
	balances := map[string][]*domain.BalanceRecord{
		"0xok":    balancesOf("0xok", 100, 50),
		"0xdust":  balancesOf("0xdust", 100, -5),     // -0.05 tokens, within tolerance
		"0xneg":   balancesOf("0xneg", 100, -50, 10), // -0.5 tokens
		"0xwhale": balancesOf("0xwhale", 200000),     // 2000 tokens > supply 1000
	}

	res := Screen(screenAsset(1000), balances, DefaultScreenOptions())

	assert.Equal(t, []string{"0xneg"}, res.NegativeWallets)
	assert.Equal(t, []string{"0xwhale"}, res.OverageWallets)
	assert.False(t, res.AssetFlagged)
	require.Len(t, res.Warnings, 2)
	for _, w := range res.Warnings {
		assert.ErrorIs(t, w, domain.ErrValuationAnomaly)
	}
	assert.True(t, res.Keep("0xdust"))
	assert.False(t, res.Keep("0xneg"))
}

func TestScreen_FlagsAssetAtThreshold(t *testing.T) {
	balances := make(map[string][]*domain.BalanceRecord)
	for i := 0; i < 5; i++ {
		w := fmt.Sprintf("0xw%d", i)
		balances[w] = balancesOf(w, 500000)
	}

	res := Screen(screenAsset(1000), balances, DefaultScreenOptions())
	assert.Len(t, res.OverageWallets, 5)
	assert.True(t, res.AssetFlagged)
}

func TestScreen_UnknownSupplySkipsOverage(t *testing.T) {
	asset := screenAsset(0)
	asset.TotalSupply = nil

	res := Screen(asset, map[string][]*domain.BalanceRecord{"0xa": balancesOf("0xa", 1e12)}, DefaultScreenOptions())
	assert.Empty(t, res.OverageWallets)
	assert.Empty(t, res.Warnings)
}

func TestScreen_ToleranceBoundaryIsNegative(t *testing.T) {
	balances := map[string][]*domain.BalanceRecord{
		"0xedge":  balancesOf("0xedge", 100, -10), // exactly -0.1 tokens
		"0xabove": balancesOf("0xabove", 100, -9), // -0.09 tokens
	}

	res := Screen(screenAsset(1000), balances, DefaultScreenOptions())
	assert.Equal(t, []string{"0xedge"}, res.NegativeWallets)
	assert.False(t, res.Keep("0xedge"))
	assert.True(t, res.Keep("0xabove"))
}
