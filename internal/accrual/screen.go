package accrual

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"coin-wallet-ledger/internal/domain"
)

// ScreenOptions are the data-quality thresholds applied to an asset's balances.
type ScreenOptions struct {
	NegativeToleranceTokens float64 // a wallet is kept only while its lowest balance stays above -tolerance
	MaxNegativeWallets      int     // asset flagged at this many negative wallets
	MaxOverageWallets       int     // asset flagged at this many wallets above total supply
}

// DefaultScreenOptions returns the thresholds used by the ledger.
func DefaultScreenOptions() ScreenOptions {
	return ScreenOptions{
		NegativeToleranceTokens: 0.1,
		MaxNegativeWallets:      10,
		MaxOverageWallets:       5,
	}
}

// ScreenResult lists data-quality findings for one asset.
type ScreenResult struct {
	NegativeWallets []string                 // sorted
	OverageWallets  []string                 // sorted
	AssetFlagged    bool                     // thresholds exceeded
	Warnings        []*domain.PartitionError // ValuationAnomaly, one per finding
}

// Keep reports whether a wallet passed the screen.
func (r *ScreenResult) Keep(wallet string) bool {
	for _, w := range r.NegativeWallets {
		if w == wallet {
			return false
		}
	}
	for _, w := range r.OverageWallets {
		if w == wallet {
			return false
		}
	}
	return true
}

// Screen checks balances for sustained negative values and for balances above total supply.
// Findings are warnings; the caller decides whether to drop flagged wallets or assets.
func Screen(asset *domain.Asset, balances map[string][]*domain.BalanceRecord, opts ScreenOptions) *ScreenResult {
	res := &ScreenResult{}
	negLimit := decimal.NewFromFloat(-opts.NegativeToleranceTokens)

	var supply *decimal.Decimal
	if asset.TotalSupply != nil && *asset.TotalSupply > 0 {
		s := decimal.NewFromFloat(*asset.TotalSupply)
		supply = &s
	}

	for wallet, rs := range balances {
		lowest, highest := decimal.Zero, decimal.Zero
		for i, b := range rs {
			tokens := asset.ToTokens(b.Balance)
			if i == 0 || tokens.LessThan(lowest) {
				lowest = tokens
			}
			if i == 0 || tokens.GreaterThan(highest) {
				highest = tokens
			}
		}

		if lowest.LessThanOrEqual(negLimit) {
			res.NegativeWallets = append(res.NegativeWallets, wallet)
			res.Warnings = append(res.Warnings, &domain.PartitionError{
				Kind:    domain.KindValuationAnomaly,
				AssetID: asset.AssetID,
				Wallet:  wallet,
				Err:     fmt.Errorf("%w: balance fell to %s tokens", domain.ErrValuationAnomaly, lowest.String()),
			})
		}
		if supply != nil && highest.GreaterThan(*supply) {
			res.OverageWallets = append(res.OverageWallets, wallet)
			res.Warnings = append(res.Warnings, &domain.PartitionError{
				Kind:    domain.KindValuationAnomaly,
				AssetID: asset.AssetID,
				Wallet:  wallet,
				Err:     fmt.Errorf("%w: balance %s exceeds total supply %s", domain.ErrValuationAnomaly, highest.String(), supply.String()),
			})
		}
	}

	sort.Strings(res.NegativeWallets)
	sort.Strings(res.OverageWallets)
	sort.Slice(res.Warnings, func(i, j int) bool {
		if res.Warnings[i].Wallet != res.Warnings[j].Wallet {
			return res.Warnings[i].Wallet < res.Warnings[j].Wallet
		}
		return res.Warnings[i].Error() < res.Warnings[j].Error()
	})

	res.AssetFlagged = (opts.MaxNegativeWallets > 0 && len(res.NegativeWallets) >= opts.MaxNegativeWallets) ||
		(opts.MaxOverageWallets > 0 && len(res.OverageWallets) >= opts.MaxOverageWallets)
	return res
}
