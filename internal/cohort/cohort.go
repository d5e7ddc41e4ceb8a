// Package cohort selects the slice of the asset universe a run processes.
package cohort

import (
	"fmt"

	"coin-wallet-ledger/internal/domain"
)

// Defaults are the staged backfill cohorts.
func Defaults() []domain.Cohort {
	return []domain.Cohort{
		{Name: "top-100", MinRank: 1, MaxRank: 100},
		{Name: "rank-100-600", MinRank: 100, MaxRank: 600},
		{Name: "rank-600-3000", MinRank: 600, MaxRank: 3000},
	}
}

// Find returns the cohort called name.
func Find(cohorts []domain.Cohort, name string) (domain.Cohort, error) {
	for _, c := range cohorts {
		if c.Name == name {
			return c, nil
		}
	}
	return domain.Cohort{}, fmt.Errorf("unknown cohort %q", name)
}

// Select keeps assets whose rank falls in c, preserving order.
// Unranked assets are only selected by an unbounded cohort.
func Select(assets []*domain.Asset, c domain.Cohort) []*domain.Asset {
	if c.Unbounded() {
		return assets
	}
	var out []*domain.Asset
	for _, a := range assets {
		if a.Rank != nil && c.Contains(*a.Rank) {
			out = append(out, a)
		}
	}
	return out
}
