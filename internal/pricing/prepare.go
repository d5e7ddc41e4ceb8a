package pricing

import (
	"time"

	"coin-wallet-ledger/internal/domain"
)

// Options controls series preparation.
type Options struct {
	DipRatio      float64 // 0 disables dip removal
	RecoveryRatio float64
	Backfill      bool // impute flat prices before the first real point
}

// DefaultOptions returns the preparation settings used by the ledger.
func DefaultOptions() Options {
	return Options{DipRatio: 0.8, RecoveryRatio: 0.9, Backfill: true}
}

// Prepared is a gap-free daily series ready for valuation.
type Prepared struct {
	Points      []*domain.PricePoint
	DipsRemoved int
	LatestReal  time.Time // zero if the series has no real quote
}

// Prepare sorts, de-dips, backfills to earliest and forward-fills through latest.
// earliest and latest are typically the first and last transfer days of the asset.
func Prepare(points []*domain.PricePoint, earliest, latest time.Time, opts Options) (*Prepared, error) {
	sorted := append([]*domain.PricePoint(nil), points...)
	if err := Sort(sorted); err != nil {
		return nil, err
	}

	res := &Prepared{}
	if opts.DipRatio > 0 {
		sorted, res.DipsRemoved = RemoveSingleDayDips(sorted, opts.DipRatio, opts.RecoveryRatio)
	}
	res.LatestReal, _ = LatestReal(sorted)

	if opts.Backfill && !earliest.IsZero() {
		sorted = BackfillFrom(sorted, earliest)
	}
	res.Points = FillGaps(sorted, latest)
	return res, nil
}
