// Package accrual folds daily net transfers into running wallet balances.
package accrual

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"coin-wallet-ledger/internal/domain"
)

// ErrMixedPartition is returned when records of more than one (asset, wallet) are passed to Accrue.
var ErrMixedPartition = errors.New("records span more than one asset or wallet")

// Accrue computes the balance sequence of one (asset, wallet).
// Records are ordered by date; the running sum of amounts is the balance and
// transfer_sequence counts emitted rows from 1. Zero amounts emit nothing.
// Two records on the same date are a SequenceViolation and nothing is returned.
func Accrue(records []*domain.NetTransferRecord) ([]*domain.BalanceRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	sorted := append([]*domain.NetTransferRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	assetID, wallet := sorted[0].AssetID, sorted[0].Wallet
	out := make([]*domain.BalanceRecord, 0, len(sorted))
	balance := decimal.Zero
	var seq int64

	for i, r := range sorted {
		if r.AssetID != assetID || r.Wallet != wallet {
			return nil, fmt.Errorf("%w: %s/%s and %s/%s", ErrMixedPartition, assetID, wallet, r.AssetID, r.Wallet)
		}
		if i > 0 && !r.Date.After(sorted[i-1].Date) {
			return nil, &domain.PartitionError{
				Kind:    domain.KindSequenceViolation,
				AssetID: assetID,
				Wallet:  wallet,
				Date:    r.Date,
				Err:     errors.New("more than one net transfer record for the day"),
			}
		}
		if r.Amount.IsZero() {
			continue
		}

		balance = balance.Add(r.Amount)
		seq++
		out = append(out, &domain.BalanceRecord{
			AssetID:          assetID,
			Wallet:           wallet,
			Date:             r.Date,
			NetTransfers:     r.Amount,
			Balance:          balance,
			TransferSequence: seq,
		})
	}
	return out, nil
}

// AssetResult holds the balances of every wallet of an asset.
type AssetResult struct {
	Balances map[string][]*domain.BalanceRecord // keyed by wallet
	Failed   map[string]error                   // wallets rejected by Accrue
}

// Wallets returns wallets with balances, ordered ASC.
func (r *AssetResult) Wallets() []string {
	out := make([]string, 0, len(r.Balances))
	for w := range r.Balances {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Flatten returns all balances ordered by (wallet, transfer_sequence).
func (r *AssetResult) Flatten() []*domain.BalanceRecord {
	var out []*domain.BalanceRecord
	for _, w := range r.Wallets() {
		out = append(out, r.Balances[w]...)
	}
	return out
}

// AccrueAsset runs Accrue for every wallet of one asset.
// A wallet failure does not affect other wallets.
func AccrueAsset(records []*domain.NetTransferRecord) *AssetResult {
	byWallet := make(map[string][]*domain.NetTransferRecord)
	for _, r := range records {
		byWallet[r.Wallet] = append(byWallet[r.Wallet], r)
	}

	res := &AssetResult{
		Balances: make(map[string][]*domain.BalanceRecord, len(byWallet)),
		Failed:   make(map[string]error),
	}
	for wallet, rs := range byWallet {
		balances, err := Accrue(rs)
		if err != nil {
			res.Failed[wallet] = err
			continue
		}
		if len(balances) > 0 {
			res.Balances[wallet] = balances
		}
	}
	return res
}
