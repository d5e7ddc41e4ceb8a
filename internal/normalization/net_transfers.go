package normalization

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coin-wallet-ledger/internal/chainaddr"
	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/idhash"
)

var (
	// ErrForeignEvent is returned when an event belongs to a different asset.
	ErrForeignEvent = errors.New("event belongs to another asset")
	// ErrMixedSources is returned when one batch carries events from more than one source.
	ErrMixedSources = errors.New("events from more than one source")
	// ErrNegativeAmount is returned for events with a negative raw amount.
	ErrNegativeAmount = errors.New("negative transfer amount")
)

// Result is the outcome of normalizing one asset's events from one source.
type Result struct {
	Records         []*domain.NetTransferRecord // sorted by (wallet, date)
	Events          int                         // events consumed
	DuplicateEvents int                         // repeated (tx_hash, log_index) ignored
	ZeroGroups      int                         // (wallet, day) groups that netted to zero
}

type walletDay struct {
	wallet string
	day    time.Time
}

// GenerateNetTransfers turns raw transfer events of one asset into signed daily
// net transfers per wallet. Amounts stay in raw units.
// Each event adds a positive leg at the receiver and a negative leg at the sender;
// an empty address (mint or burn) has no leg. Groups that sum to exactly zero are dropped.
// An asset with unknown or non-positive decimals yields a SkippedAsset error.
func GenerateNetTransfers(asset *domain.Asset, events []*domain.TransferEvent) (*Result, error) {
	if !asset.HasValidDecimals() {
		return nil, &domain.PartitionError{
			Kind:    domain.KindSkippedAsset,
			AssetID: asset.AssetID,
			Err:     errors.New("decimals unknown or non-positive"),
		}
	}

	chain := domain.LookupChain(asset.Chain)
	res := &Result{}
	seen := make(map[string]struct{}, len(events))
	sums := make(map[walletDay]decimal.Decimal)
	source := ""

	for _, e := range events {
		if e.AssetID != asset.AssetID {
			return nil, fmt.Errorf("%w: %s in batch for %s", ErrForeignEvent, e.AssetID, asset.AssetID)
		}
		if source == "" {
			source = e.Source
		} else if e.Source != source {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedSources, source, e.Source)
		}
		if e.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: tx %s log %d", ErrNegativeAmount, e.TxHash, e.LogIndex)
		}

		id := idhash.ComputeEventID(e.Source, e.AssetID, e.TxHash, e.LogIndex)
		if _, dup := seen[id]; dup {
			res.DuplicateEvents++
			continue
		}
		seen[id] = struct{}{}
		res.Events++

		day := domain.Day(e.TimestampMs)
		if e.Receiver != "" {
			k := walletDay{wallet: chainaddr.Normalize(chain.Name, e.Receiver), day: day}
			sums[k] = sums[k].Add(e.Amount)
		}
		if e.Sender != "" {
			k := walletDay{wallet: chainaddr.Normalize(chain.Name, e.Sender), day: day}
			sums[k] = sums[k].Sub(e.Amount)
		}
	}

	res.Records = make([]*domain.NetTransferRecord, 0, len(sums))
	for k, amount := range sums {
		if amount.IsZero() {
			res.ZeroGroups++
			continue
		}
		res.Records = append(res.Records, &domain.NetTransferRecord{
			AssetID: asset.AssetID,
			Wallet:  k.wallet,
			Date:    k.day,
			Source:  source,
			Amount:  amount,
		})
	}
	SortNetTransfers(res.Records)
	return res, nil
}

// GroupByWallet splits sorted records into per-wallet slices, keeping order.
func GroupByWallet(records []*domain.NetTransferRecord) map[string][]*domain.NetTransferRecord {
	out := make(map[string][]*domain.NetTransferRecord)
	for _, r := range records {
		out[r.Wallet] = append(out[r.Wallet], r)
	}
	return out
}
