// Package orchestrator runs the ledger pipeline over asset partitions.
// Per run: exclusion snapshot → source ownership → per asset in parallel:
// normalization → wallet filter → accrual → screen → valuation → validation → replace.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"coin-wallet-ledger/internal/accrual"
	"coin-wallet-ledger/internal/cohort"
	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/eligibility"
	"coin-wallet-ledger/internal/logging"
	"coin-wallet-ledger/internal/normalization"
	"coin-wallet-ledger/internal/observability"
	"coin-wallet-ledger/internal/pricing"
	"coin-wallet-ledger/internal/reconcile"
	"coin-wallet-ledger/internal/storage"
	"coin-wallet-ledger/internal/validation"
	"coin-wallet-ledger/internal/valuation"
)

// Options for creating Orchestrator.
type Options struct {
	// Input stores
	AssetStore          storage.AssetStore
	ClassificationStore storage.ClassificationStore
	TransferEventStore  storage.TransferEventStore
	PriceStore          storage.PriceStore

	// Output stores
	NetTransferStore storage.NetTransferStore
	BalanceStore     storage.BalanceStore
	ProfitStore      storage.ProfitStore

	// Optional stores
	PartitionStateStore storage.PartitionStateStore // enables SkipUnchanged
	ExclusionCache      storage.ExclusionCache
	ExclusionCacheTTL   time.Duration

	// Policy
	ExclusionPolicy eligibility.Policy
	DeniedWallets   map[string][]string // chain -> addresses
	Sources         []domain.SourceConfig
	Cohort          *domain.Cohort // nil processes every asset

	// Stage settings
	Screen     accrual.ScreenOptions
	Pricing    pricing.Options
	Valuation  valuation.Options
	Validation validation.Options

	Workers       int  // parallel asset partitions, default 1
	DropFlagged   bool // omit wallets/assets flagged by the data-quality screen
	SkipUnchanged bool // skip partitions whose inputs match the last build

	Metrics *observability.Metrics
	Log     logrus.FieldLogger
}

// Orchestrator coordinates one ledger run.
type Orchestrator struct {
	opts      Options
	runner    *normalization.Runner
	engine    *valuation.Engine
	validator *validation.Validator
	metrics   *observability.Metrics
	log       logrus.FieldLogger
	now       func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := logging.OrDiscard(opts.Log).WithField("component", "orchestrator")
	return &Orchestrator{
		opts:      opts,
		runner:    normalization.NewRunner(opts.TransferEventStore, log),
		engine:    valuation.NewEngine(opts.Valuation),
		validator: validation.NewValidator(opts.Validation),
		metrics:   opts.Metrics,
		log:       log,
		now:       time.Now,
	}
}

// Run executes the pipeline once.
// Steps:
//  1. Load assets, restricted to the cohort if set
//  2. Compute the exclusion snapshot and skip excluded or unscalable assets
//  3. Load every source's claims concurrently, then assign ownership
//  4. Process owned assets in parallel, each partition all-or-nothing
//
// Partition failures are reported in the RunReport; the returned error is
// reserved for failures that stop the whole run.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: uuid.NewString(), Started: o.now()}
	log := o.log.WithField("run_id", report.RunID)

	// Phase 1: assets
	assets, err := o.opts.AssetStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load assets) failed: %w", err)
	}
	tracked := assets
	if o.opts.Cohort != nil {
		report.Cohort = o.opts.Cohort.Name
		assets = cohort.Select(assets, *o.opts.Cohort)
	}
	log.WithFields(logrus.Fields{"assets": len(assets), "cohort": report.Cohort}).Info("run started")

	// Phase 2: eligibility
	snap := eligibility.NewSnapshotter(o.opts.ClassificationStore, o.opts.ExclusionCache, o.opts.ExclusionCacheTTL, log).
		WithMetrics(o.metrics)
	set, fp, err := snap.Snapshot(ctx, o.opts.ExclusionPolicy)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (exclusion snapshot) failed: %w", err)
	}
	report.ExclusionFingerprint = fp

	eligible, excluded := eligibility.FilterAssets(assets, set)
	var purge []string
	for _, a := range excluded {
		report.Partitions = append(report.Partitions, o.skip(a.AssetID, "excluded: "+set.Reason(a.AssetID)))
		purge = append(purge, a.AssetID)
		if o.metrics != nil {
			o.metrics.AssetsExcluded.Inc()
		}
	}

	inScope := make(map[string]*domain.Asset, len(eligible))
	for _, a := range eligible {
		if !a.HasValidDecimals() {
			report.Partitions = append(report.Partitions, o.skip(a.AssetID, "decimals unknown or non-positive"))
			purge = append(purge, a.AssetID)
			continue
		}
		inScope[a.AssetID] = a
	}
	for _, id := range purge {
		if err := o.purge(ctx, report.RunID, id); err != nil {
			return nil, fmt.Errorf("phase 2 (purge %s) failed: %w", id, err)
		}
	}

	// Phase 3: ownership
	claims, err := o.loadClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (load claims) failed: %w", err)
	}
	ownership := reconcile.AssignOwnership(claims, o.opts.Sources, func(id string) (string, bool) {
		a, ok := inScope[id]
		if !ok {
			return "", false
		}
		return a.Chain, true
	})

	conflicts := append([]reconcile.Conflict(nil), ownership.Conflicts()...)
	conflicts = append(conflicts, reconcile.CheckDisjoint(ownership.ClaimedBy())...)
	report.Conflicts = conflicts
	conflicted := make(map[string]struct{}, len(conflicts))
	for _, c := range conflicts {
		conflicted[c.AssetID] = struct{}{}
		report.Partitions = append(report.Partitions, &PartitionResult{
			AssetID: c.AssetID,
			Status:  StatusFailed,
			Reason:  c.Err().Error(),
		})
		o.metrics.RecordPartition(string(StatusFailed), 0)
		o.metrics.RecordFinding(string(domain.KindOwnershipConflict), true)
		if o.metrics != nil {
			o.metrics.Conflicts.Inc()
		}
		log.WithFields(logrus.Fields{"asset_id": c.AssetID, "sources": c.Sources}).Error("ownership conflict")
	}

	var owned []*domain.Asset
	for _, id := range sortedIDs(inScope) {
		if _, bad := conflicted[id]; bad {
			continue
		}
		if _, ok := ownership.Owner(id); !ok {
			report.Partitions = append(report.Partitions, o.skip(id, "no transfer history in any source"))
			continue
		}
		owned = append(owned, inScope[id])
	}

	// Phase 4: partitions
	wallets := eligibility.NewWalletFilter(o.opts.DeniedWallets, tracked)
	results := make([]*PartitionResult, len(owned))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, a := range owned {
		g.Go(func() error {
			results[i] = o.runPartition(gctx, report.RunID, a, ownership, wallets)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	report.Partitions = append(report.Partitions, results...)
	report.sort()
	report.Finished = o.now()

	o.metrics.RecordRun(report.Failed(), report.Finished.Sub(report.Started), report.Finished)
	counts := report.Counts()
	log.WithFields(logrus.Fields{
		"ok":        counts[StatusOK],
		"unchanged": counts[StatusUnchanged],
		"skipped":   counts[StatusSkipped],
		"failed":    counts[StatusFailed],
		"conflicts": len(conflicts),
	}).Info("run finished")
	return report, nil
}

// loadClaims lists every configured source's assets concurrently.
// All sources are fully loaded before ownership is assigned.
func (o *Orchestrator) loadClaims(ctx context.Context) (reconcile.Claims, error) {
	var mu sync.Mutex
	claims := make(reconcile.Claims, len(o.opts.Sources))

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range o.opts.Sources {
		g.Go(func() error {
			ids, err := o.opts.TransferEventStore.ListAssets(gctx, s.Name)
			if err != nil {
				return fmt.Errorf("list assets of source %s: %w", s.Name, err)
			}
			mu.Lock()
			claims[s.Name] = ids
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return claims, nil
}

// purge removes output left by an earlier build of an asset that is no longer eligible.
func (o *Orchestrator) purge(ctx context.Context, runID, assetID string) error {
	existing, err := o.opts.NetTransferStore.GetByAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	if err := o.opts.NetTransferStore.ReplaceAsset(ctx, assetID, nil); err != nil {
		return err
	}
	if err := o.opts.BalanceStore.ReplaceAsset(ctx, assetID, nil); err != nil {
		return err
	}
	if err := o.opts.ProfitStore.ReplaceAsset(ctx, assetID, nil); err != nil {
		return err
	}
	if o.opts.PartitionStateStore != nil {
		state := &storage.PartitionState{AssetID: assetID, RunID: runID, UpdatedAtMs: o.now().UnixMilli()}
		if err := o.opts.PartitionStateStore.Set(ctx, state); err != nil {
			return err
		}
	}
	o.log.WithField("asset_id", assetID).Info("stale partition removed")
	return nil
}

func (o *Orchestrator) skip(assetID, reason string) *PartitionResult {
	o.metrics.RecordPartition(string(StatusSkipped), 0)
	o.log.WithFields(logrus.Fields{"asset_id": assetID, "reason": reason}).Debug("asset skipped")
	return &PartitionResult{AssetID: assetID, Status: StatusSkipped, Reason: reason}
}

func sortedIDs(m map[string]*domain.Asset) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
