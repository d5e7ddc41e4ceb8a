// Package valuation joins wallet balances with daily prices into USD profit rows.
package valuation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/pricing"
)

// Options controls how balance rows become profit rows.
type Options struct {
	// CollapsePreHistory folds rows dated before the first price point into one
	// imputed row on the first price date. When false such rows fail with ErrMissingPrice.
	CollapsePreHistory bool
	// SkipUntilFirstInflow drops leading rows until the wallet has received tokens.
	SkipUntilFirstInflow bool
	// EmitPriceOnlyDays adds a row for every priced day without a transfer while the
	// wallet holds a non-zero balance.
	EmitPriceOnlyDays bool
}

// DefaultOptions returns the valuation settings used by the ledger.
func DefaultOptions() Options {
	return Options{CollapsePreHistory: true, SkipUntilFirstInflow: true}
}

// Engine computes profit rows. It holds no state between calls.
type Engine struct {
	opts Options
}

// NewEngine creates a valuation engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// row is a balance row converted to tokens.
type row struct {
	date    time.Time
	seq     int64 // 0 for price-only rows
	net     float64
	balance float64
	imputed bool
}

// ValueWallet computes the profit rows of one (asset, wallet).
// balances must belong to a single wallet; prices must be the asset's series.
func (e *Engine) ValueWallet(asset *domain.Asset, balances []*domain.BalanceRecord, prices []*domain.PricePoint) ([]*domain.ProfitRecord, error) {
	if !asset.HasValidDecimals() {
		return nil, &domain.PartitionError{
			Kind:    domain.KindSkippedAsset,
			AssetID: asset.AssetID,
			Err:     errors.New("decimals unknown or non-positive"),
		}
	}
	if len(balances) == 0 {
		return nil, nil
	}

	sorted := append([]*domain.BalanceRecord(nil), balances...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TransferSequence < sorted[j].TransferSequence
	})
	wallet := sorted[0].Wallet

	series := append([]*domain.PricePoint(nil), prices...)
	if err := pricing.Sort(series); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, missingPrice(asset.AssetID, wallet, sorted[0].Date)
	}
	byDate := pricing.Index(series)

	rows := make([]row, 0, len(sorted))
	for _, b := range sorted {
		rows = append(rows, row{
			date:    b.Date,
			seq:     b.TransferSequence,
			net:     asset.ToTokens(b.NetTransfers).InexactFloat64(),
			balance: asset.ToTokens(b.Balance).InexactFloat64(),
		})
	}

	if e.opts.CollapsePreHistory {
		rows = collapsePreHistory(rows, series[0].Date)
	}
	if e.opts.SkipUntilFirstInflow {
		rows = skipUntilFirstInflow(rows)
	}
	if e.opts.EmitPriceOnlyDays {
		rows = withPriceOnlyDays(rows, series)
	}

	out := make([]*domain.ProfitRecord, 0, len(rows))
	var acc accumulator
	for _, r := range rows {
		p, ok := byDate[r.date]
		if !ok {
			return nil, missingPrice(asset.AssetID, wallet, r.date)
		}

		rec := acc.step(r.net, r.balance, p.Price)
		rec.AssetID = asset.AssetID
		rec.Wallet = wallet
		rec.Date = r.date
		rec.TransferSequence = r.seq
		rec.Imputed = p.Imputed || r.imputed
		out = append(out, rec)
	}
	return out, nil
}

func missingPrice(assetID, wallet string, date time.Time) error {
	return &domain.PartitionError{
		Kind:    domain.KindValuationAnomaly,
		AssetID: assetID,
		Wallet:  wallet,
		Date:    date,
		Err:     domain.ErrMissingPrice,
	}
}

// collapsePreHistory replaces rows before firstPrice, and the row on firstPrice if any,
// with one row on firstPrice whose net transfer is the balance as of that day.
func collapsePreHistory(rows []row, firstPrice time.Time) []row {
	n := 0
	for n < len(rows) && !rows[n].date.After(firstPrice) {
		n++
	}
	if n == 0 || !rows[0].date.Before(firstPrice) {
		return rows
	}

	last := rows[n-1]
	collapsed := row{
		date:    firstPrice,
		seq:     last.seq,
		net:     last.balance,
		balance: last.balance,
		imputed: true,
	}
	return append([]row{collapsed}, rows[n:]...)
}

// skipUntilFirstInflow drops leading rows until a row with a positive net transfer.
func skipUntilFirstInflow(rows []row) []row {
	for i, r := range rows {
		if r.net > 0 {
			return rows[i:]
		}
	}
	return nil
}

// withPriceOnlyDays inserts rows for priced days between transfers while the balance is non-zero.
func withPriceOnlyDays(rows []row, series []*domain.PricePoint) []row {
	if len(rows) == 0 {
		return rows
	}
	out := make([]row, 0, len(rows))
	si := 0
	for i, r := range rows {
		out = append(out, r)
		if r.balance == 0 {
			continue
		}
		for si < len(series) && !series[si].Date.After(r.date) {
			si++
		}
		for si < len(series) && (i == len(rows)-1 || series[si].Date.Before(rows[i+1].date)) {
			out = append(out, row{date: series[si].Date, balance: r.balance})
			si++
		}
	}
	return out
}

// ValueAsset runs ValueWallet for every wallet. Wallet failures are isolated.
func (e *Engine) ValueAsset(asset *domain.Asset, balances map[string][]*domain.BalanceRecord, prices []*domain.PricePoint) (*AssetResult, error) {
	if !asset.HasValidDecimals() {
		return nil, &domain.PartitionError{
			Kind:    domain.KindSkippedAsset,
			AssetID: asset.AssetID,
			Err:     errors.New("decimals unknown or non-positive"),
		}
	}
	if len(prices) == 0 && len(balances) > 0 {
		return nil, &domain.PartitionError{
			Kind:    domain.KindValuationAnomaly,
			AssetID: asset.AssetID,
			Err:     fmt.Errorf("%w: asset has no price series", domain.ErrMissingPrice),
		}
	}

	res := &AssetResult{
		Profits: make(map[string][]*domain.ProfitRecord, len(balances)),
		Failed:  make(map[string]error),
	}
	for wallet, bs := range balances {
		rows, err := e.ValueWallet(asset, bs, prices)
		if err != nil {
			res.Failed[wallet] = err
			continue
		}
		if len(rows) > 0 {
			res.Profits[wallet] = rows
		}
	}
	return res, nil
}

// AssetResult holds the profit rows of every wallet of an asset.
type AssetResult struct {
	Profits map[string][]*domain.ProfitRecord // keyed by wallet
	Failed  map[string]error
}

// Flatten returns all rows ordered by (wallet, date).
func (r *AssetResult) Flatten() []*domain.ProfitRecord {
	wallets := make([]string, 0, len(r.Profits))
	for w := range r.Profits {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)

	var out []*domain.ProfitRecord
	for _, w := range wallets {
		out = append(out, r.Profits[w]...)
	}
	return out
}
