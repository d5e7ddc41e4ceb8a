package validation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-wallet-ledger/internal/domain"
)

var d0 = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func at(offset int) time.Time { return d0.AddDate(0, 0, offset) }

func testAsset() *domain.Asset {
	decimals := 18
	return &domain.Asset{AssetID: "A", Chain: "ethereum", Decimals: &decimals}
}

func profit(offset int, price, balance, net, usdBalance, change, inflows float64) *domain.ProfitRecord {
	return &domain.ProfitRecord{
		AssetID: "A", Wallet: "W", Date: at(offset),
		Price: price, BalanceTokens: balance, NetTransferTokens: net,
		UsdNetTransfers: net * price, UsdBalance: usdBalance,
		ProfitsChange: change, UsdInflowsCumulative: inflows,
	}
}

func realPrices(n int) []*domain.PricePoint {
	out := make([]*domain.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &domain.PricePoint{AssetID: "A", Date: at(i), Price: 10})
	}
	return out
}

func transfers(offsets ...int) []*domain.NetTransferRecord {
	out := make([]*domain.NetTransferRecord, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, &domain.NetTransferRecord{AssetID: "A", Wallet: "W", Date: at(o), Amount: decimal.NewFromInt(1)})
	}
	return out
}

func TestFreshnessCutoff(t *testing.T) {
	cut := FreshnessCutoff(at(30), at(25).Add(3*time.Hour), 10)
	assert.True(t, cut.Equal(at(15)))

	assert.True(t, FreshnessCutoff(time.Time{}, at(3), 10).IsZero())
}

func TestValidate_CleanPartition(t *testing.T) {
	in := Input{
		Asset:        testAsset(),
		NetTransfers: transfers(0, 1, 40),
		Prices:       realPrices(41),
		Profits: []*domain.ProfitRecord{
			profit(0, 10, 2, 2, 20, 0, 20),
			profit(1, 12, 1, -1, 12, 4, 20),
		},
	}

	rep := NewValidator(DefaultOptions()).Validate(in)
	assert.Empty(t, rep.Findings)
	assert.Equal(t, 2, rep.RowsChecked)
	assert.False(t, rep.Fatal())
	assert.True(t, rep.FreshnessCutoff.Equal(at(30)))
}

func TestValidate_RecurrenceToleranceIsLooserOfAbsAndRel(t *testing.T) {
	prices := realPrices(41)
	base := func(cur float64) Input {
		return Input{
			Asset:        testAsset(),
			NetTransfers: transfers(0, 40),
			Prices:       prices,
			Profits: []*domain.ProfitRecord{
				profit(0, 10, 1000, 1000, 10000, 0, 10000),
				profit(1, 10, 1000, 0, cur, 0, 10000),
			},
		}
	}

	v := NewValidator(DefaultOptions())
	// 1% of 10000 = 100 beats $1
	assert.Empty(t, v.Validate(base(10099)).Findings)

	rep := v.Validate(base(10101))
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, CheckRecurrence, rep.Findings[0].Check)
	assert.Equal(t, domain.KindValuationAnomaly, rep.Findings[0].Kind)
	assert.False(t, rep.Fatal())
}

func TestValidate_ProfitsChangeMismatch(t *testing.T) {
	in := Input{
		Asset:        testAsset(),
		NetTransfers: transfers(0, 40),
		Prices:       realPrices(41),
		Profits: []*domain.ProfitRecord{
			profit(0, 10, 2, 2, 20, 0, 20),
			profit(1, 12, 2, 0, 30, 10, 20), // change should be 4
		},
	}
	rep := NewValidator(DefaultOptions()).Validate(in)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, CheckProfitsChange, rep.Findings[0].Check)
	assert.InDelta(t, 4, rep.Findings[0].Expected, 1e-9)
}

func TestValidate_SkipsFreshAndImputedRows(t *testing.T) {
	imputed := profit(1, 12, 2, 0, 999, 0, 20)
	imputed.Imputed = true

	in := Input{
		Asset:        testAsset(),
		NetTransfers: transfers(0, 12),
		Prices:       realPrices(13),
		Profits: []*domain.ProfitRecord{
			profit(0, 10, 2, 2, 20, 0, 20),
			imputed,
			profit(2, 12, 2, 0, 999, 0, 20),   // prev imputed
			profit(5, 12, 2, 0, 12345, 0, 20), // after cutoff day 2
		},
	}

	rep := NewValidator(DefaultOptions()).Validate(in)
	assert.Empty(t, rep.Findings)
	assert.Equal(t, 1, rep.RowsChecked)
	assert.Equal(t, 2, rep.SkippedImputed)
	assert.Equal(t, 1, rep.SkippedFresh)
}

func TestValidate_InflowsMustNotDecrease(t *testing.T) {
	in := Input{
		Asset:        testAsset(),
		NetTransfers: transfers(0, 40),
		Prices:       realPrices(41),
		Profits: []*domain.ProfitRecord{
			profit(0, 10, 2, 2, 20, 0, 20),
			profit(1, 10, 2, 0, 20, 0, 19.999), // within 0.0001x band
			profit(2, 10, 2, 0, 20, 0, 15),
		},
	}

	rep := NewValidator(DefaultOptions()).Validate(in)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, CheckInflowsMonotonic, rep.Findings[0].Check)
	assert.True(t, rep.Findings[0].Date.Equal(at(2)))
}

func TestValidate_SequenceAndZeroRowsAreFatal(t *testing.T) {
	zero := transfers(0)
	zero[0].Amount = decimal.Zero

	in := Input{
		Asset:        testAsset(),
		NetTransfers: zero,
		Balances: []*domain.BalanceRecord{
			{AssetID: "A", Wallet: "W", Date: at(0), TransferSequence: 1},
			{AssetID: "A", Wallet: "W", Date: at(0), TransferSequence: 2},
		},
	}

	rep := NewValidator(DefaultOptions()).Validate(in)
	require.Len(t, rep.Findings, 2)
	assert.True(t, rep.Fatal())
	assert.Empty(t, rep.Warnings())
}

func TestValidate_MarketCapAnomaly(t *testing.T) {
	prices := realPrices(41)
	mcap := 15.0
	prices[0].MarketCap = &mcap

	in := Input{
		Asset:        testAsset(),
		NetTransfers: transfers(0, 40),
		Prices:       prices,
		Profits:      []*domain.ProfitRecord{profit(0, 10, 2, 2, 20, 0, 20)},
	}

	rep := NewValidator(DefaultOptions()).Validate(in)
	require.Len(t, rep.Warnings(), 1)
	assert.Equal(t, CheckMarketCap, rep.Findings[0].Check)
}
