package normalization

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/logging"
	"coin-wallet-ledger/internal/storage"
)

// Runner loads one source's events for an asset and normalizes them.
type Runner struct {
	eventStore storage.TransferEventStore
	log        logrus.FieldLogger
}

// NewRunner creates a new normalization runner.
func NewRunner(eventStore storage.TransferEventStore, log logrus.FieldLogger) *Runner {
	return &Runner{
		eventStore: eventStore,
		log:        logging.OrDiscard(log),
	}
}

// NormalizeAsset processes the events of one (source, asset).
// Steps:
//  1. Load events of the source from the store
//  2. Sort by (timestamp_ms, tx_hash, log_index)
//  3. Generate net transfers
//
// A SkippedAsset error is logged at warn and returned for the caller to report.
func (r *Runner) NormalizeAsset(ctx context.Context, source string, asset *domain.Asset) (*Result, error) {
	log := r.log.WithFields(logrus.Fields{"asset_id": asset.AssetID, "source": source})

	events, err := r.eventStore.GetByAsset(ctx, source, asset.AssetID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	SortTransferEvents(events)

	res, err := GenerateNetTransfers(asset, events)
	if err != nil {
		if errors.Is(err, domain.ErrSkippedAsset) {
			log.WithError(err).Warn("asset skipped by normalizer")
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"events":     res.Events,
		"duplicates": res.DuplicateEvents,
		"records":    len(res.Records),
		"zero_days":  res.ZeroGroups,
	}).Debug("net transfers generated")
	return res, nil
}
