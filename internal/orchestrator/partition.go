package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"coin-wallet-ledger/internal/accrual"
	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/eligibility"
	"coin-wallet-ledger/internal/idhash"
	"coin-wallet-ledger/internal/pricing"
	"coin-wallet-ledger/internal/reconcile"
	"coin-wallet-ledger/internal/storage"
	"coin-wallet-ledger/internal/validation"
)

// runPartition rebuilds one asset. Nothing is written unless every stage
// succeeds and validation reports no fatal finding.
func (o *Orchestrator) runPartition(
	ctx context.Context,
	runID string,
	asset *domain.Asset,
	ownership *reconcile.Ownership,
	wallets *eligibility.WalletFilter,
) *PartitionResult {
	start := time.Now()
	owner, _ := ownership.Owner(asset.AssetID)
	res := &PartitionResult{AssetID: asset.AssetID, Source: owner, Status: StatusOK}
	log := o.log.WithFields(logrus.Fields{"run_id": runID, "asset_id": asset.AssetID, "source": owner})

	err := o.buildPartition(ctx, runID, asset, ownership, wallets, res, log)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSkippedAsset):
		res.Status = StatusSkipped
		res.Reason = err.Error()
	default:
		res.Status = StatusFailed
		res.Reason = err.Error()
		log.WithError(err).Error("partition failed")
	}
	if res.Status != StatusOK {
		res.NetTransfers, res.Balances, res.Profits = 0, 0, 0
	}

	res.Duration = time.Since(start)
	o.metrics.RecordPartition(string(res.Status), res.Duration)
	log.WithFields(logrus.Fields{
		"status":   res.Status,
		"warnings": len(res.Warnings),
		"duration": res.Duration,
	}).Info("partition finished")
	return res
}

func (o *Orchestrator) buildPartition(
	ctx context.Context,
	runID string,
	asset *domain.Asset,
	ownership *reconcile.Ownership,
	wallets *eligibility.WalletFilter,
	res *PartitionResult,
	log logrus.FieldLogger,
) error {
	// Stage 1: normalize the owner's events
	norm, err := o.runner.NormalizeAsset(ctx, res.Source, asset)
	if err != nil {
		if errors.Is(err, domain.ErrSkippedAsset) {
			o.metrics.RecordFinding(string(domain.KindSkippedAsset), false)
		}
		return err
	}
	records := reconcile.Merge(ownership, map[string][]*domain.NetTransferRecord{res.Source: norm.Records})[asset.AssetID]
	if err := reconcile.VerifyOwner(ownership, asset.AssetID, records); err != nil {
		o.metrics.RecordFinding(string(domain.KindOwnershipConflict), true)
		return err
	}

	// Stage 2: drop excluded wallets
	records, dropped := wallets.FilterRecords(asset.Chain, records)
	if len(dropped) > 0 {
		res.WalletRecordsDropped = dropped
		o.metrics.RecordWalletExclusions(dropped)
	}

	prices, err := o.opts.PriceStore.GetByAsset(ctx, asset.AssetID)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	// Stage 3: skip when the inputs match the last build
	var fingerprint string
	if o.opts.SkipUnchanged && o.opts.PartitionStateStore != nil {
		fingerprint = idhash.ComputePartitionFingerprint(o.settingsSalt(res.Source, asset), records, prices)
		prev, err := o.opts.PartitionStateStore.Get(ctx, asset.AssetID)
		switch {
		case err == nil && prev.InputFingerprint == fingerprint:
			res.Status = StatusUnchanged
			res.Reason = "inputs unchanged since run " + prev.RunID
			return nil
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("load partition state: %w", err)
		}
	}

	// Stage 4: balances
	// A failed wallet is dropped whole; the other wallets of the asset proceed.
	accrued := accrual.AccrueAsset(records)
	if len(accrued.Failed) > 0 {
		res.WalletErrors = make(map[string]string, len(accrued.Failed))
		for wallet, werr := range accrued.Failed {
			res.WalletErrors[wallet] = werr.Error()
			o.metrics.RecordFinding(string(domain.KindSequenceViolation), true)
			log.WithField("wallet", wallet).WithError(werr).Error("wallet accrual failed")
		}
		records = keepWallets(records, accrued.Balances)
	}

	screen := accrual.Screen(asset, accrued.Balances, o.opts.Screen)
	for _, w := range screen.Warnings {
		o.warn(res, log, w.Kind, w.Error())
	}
	balances := accrued.Balances
	if o.opts.DropFlagged {
		if screen.AssetFlagged {
			return &domain.PartitionError{
				Kind:    domain.KindSkippedAsset,
				AssetID: asset.AssetID,
				Err: fmt.Errorf("data-quality screen flagged asset: %d negative, %d over supply",
					len(screen.NegativeWallets), len(screen.OverageWallets)),
			}
		}
		balances = make(map[string][]*domain.BalanceRecord, len(accrued.Balances))
		for wallet, bs := range accrued.Balances {
			if screen.Keep(wallet) {
				balances[wallet] = bs
			}
		}
		records = keepWallets(records, balances)
	}

	// Stage 5: prices and profits
	earliest, latest := dateRange(records)
	prepared, err := pricing.Prepare(prices, earliest, latest, o.opts.Pricing)
	if err != nil {
		return &domain.PartitionError{Kind: domain.KindSkippedAsset, AssetID: asset.AssetID, Err: err}
	}

	valued, err := o.engine.ValueAsset(asset, balances, prepared.Points)
	if err != nil {
		var pe *domain.PartitionError
		if errors.As(err, &pe) && pe.Kind == domain.KindValuationAnomaly {
			o.warn(res, log, pe.Kind, pe.Error())
			return &domain.PartitionError{Kind: domain.KindSkippedAsset, AssetID: asset.AssetID, Err: pe.Err}
		}
		return err
	}
	if len(valued.Failed) > 0 {
		// keep the three outputs aligned: a wallet without profits is not written at all
		kept := make(map[string][]*domain.BalanceRecord, len(balances))
		for wallet, bs := range balances {
			if _, failed := valued.Failed[wallet]; !failed {
				kept[wallet] = bs
			}
		}
		balances = kept
		records = keepWallets(records, balances)
		for _, wallet := range sortedKeys(valued.Failed) {
			o.warn(res, log, domain.KindValuationAnomaly, valued.Failed[wallet].Error())
		}
	}

	// Stage 6: validate before any write
	net := records
	bals := flattenBalances(balances)
	profits := valued.Flatten()
	rep := o.validator.Validate(validation.Input{
		Asset:        asset,
		NetTransfers: net,
		Balances:     bals,
		Profits:      profits,
		Prices:       prepared.Points,
	})
	for _, f := range rep.Findings {
		o.metrics.RecordFinding(string(f.Kind), f.Fatal())
		if !f.Fatal() {
			res.Warnings = append(res.Warnings, f.String())
		}
	}
	if rep.Fatal() {
		var msgs []string
		for _, f := range rep.Findings {
			if f.Fatal() {
				msgs = append(msgs, f.String())
			}
		}
		return fmt.Errorf("%w: validation: %s", domain.ErrSequenceViolation, strings.Join(msgs, "; "))
	}

	// Stage 7: replace
	if err := o.opts.NetTransferStore.ReplaceAsset(ctx, asset.AssetID, net); err != nil {
		return fmt.Errorf("write net transfers: %w", err)
	}
	if err := o.opts.BalanceStore.ReplaceAsset(ctx, asset.AssetID, bals); err != nil {
		return fmt.Errorf("write balances: %w", err)
	}
	if err := o.opts.ProfitStore.ReplaceAsset(ctx, asset.AssetID, profits); err != nil {
		return fmt.Errorf("write profits: %w", err)
	}
	res.NetTransfers, res.Balances, res.Profits = len(net), len(bals), len(profits)
	o.metrics.RecordRows("net_transfers", len(net))
	o.metrics.RecordRows("balances", len(bals))
	o.metrics.RecordRows("profits", len(profits))

	// partitions with wallet failures are rebuilt and re-reported on every run
	if fingerprint != "" && len(res.WalletErrors) == 0 {
		state := &storage.PartitionState{
			AssetID:          asset.AssetID,
			RunID:            runID,
			InputFingerprint: fingerprint,
			UpdatedAtMs:      o.now().UnixMilli(),
		}
		if err := o.opts.PartitionStateStore.Set(ctx, state); err != nil {
			log.WithError(err).Warn("save partition state failed")
		}
	}
	return nil
}

func (o *Orchestrator) warn(res *PartitionResult, log logrus.FieldLogger, kind domain.ErrorKind, msg string) {
	res.Warnings = append(res.Warnings, msg)
	o.metrics.RecordFinding(string(kind), false)
	log.WithField("kind", kind).Warn(msg)
}

// settingsSalt covers the asset metadata and every option that changes derived
// rows, so a metadata fix or settings change forces a rebuild.
func (o *Orchestrator) settingsSalt(owner string, asset *domain.Asset) string {
	decimals, supply := "nil", "nil"
	if asset.Decimals != nil {
		decimals = strconv.Itoa(*asset.Decimals)
	}
	if asset.TotalSupply != nil {
		supply = strconv.FormatFloat(*asset.TotalSupply, 'g', -1, 64)
	}
	return fmt.Sprintf("%s|decimals=%s|supply=%s|%+v|%+v|%+v|%+v|%t",
		owner, decimals, supply, o.opts.Screen, o.opts.Pricing, o.opts.Valuation, o.opts.Validation, o.opts.DropFlagged)
}

func keepWallets(records []*domain.NetTransferRecord, balances map[string][]*domain.BalanceRecord) []*domain.NetTransferRecord {
	out := make([]*domain.NetTransferRecord, 0, len(records))
	for _, r := range records {
		if _, ok := balances[r.Wallet]; ok {
			out = append(out, r)
		}
	}
	return out
}

func dateRange(records []*domain.NetTransferRecord) (earliest, latest time.Time) {
	for _, r := range records {
		if earliest.IsZero() || r.Date.Before(earliest) {
			earliest = r.Date
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return earliest, latest
}

func flattenBalances(balances map[string][]*domain.BalanceRecord) []*domain.BalanceRecord {
	var out []*domain.BalanceRecord
	for _, w := range sortedKeys(balances) {
		out = append(out, balances[w]...)
	}
	return out
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
