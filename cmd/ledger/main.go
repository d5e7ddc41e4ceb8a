// Package main runs one ledger build: net transfers, balances and profits
// for every eligible asset.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"coin-wallet-ledger/internal/accrual"
	"coin-wallet-ledger/internal/cohort"
	"coin-wallet-ledger/internal/config"
	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/fixtures"
	"coin-wallet-ledger/internal/logging"
	"coin-wallet-ledger/internal/observability"
	"coin-wallet-ledger/internal/orchestrator"
	"coin-wallet-ledger/internal/pricing"
	"coin-wallet-ledger/internal/reporting"
	"coin-wallet-ledger/internal/storage"
	chstore "coin-wallet-ledger/internal/storage/clickhouse"
	"coin-wallet-ledger/internal/storage/memory"
	pgstore "coin-wallet-ledger/internal/storage/postgres"
	redisstore "coin-wallet-ledger/internal/storage/redis"
	"coin-wallet-ledger/internal/validation"
	"coin-wallet-ledger/internal/valuation"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	cohortName := flag.String("cohort", "", "Process only assets of this cohort (empty for all)")
	loadFixtures := flag.Bool("fixtures", false, "Seed input stores with demo data before the run")
	skipUnchanged := flag.Bool("skip-unchanged", true, "Skip assets whose inputs did not change since the last build")
	outputDir := flag.String("output-dir", "", "Write RUN_REPORT.md and asset_summary.csv here (empty to skip)")
	verbose := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.WithError(err).Error("load policy")
		return 1
	}

	var selected *domain.Cohort
	if *cohortName != "" {
		c, err := cohort.Find(policy.Cohorts, *cohortName)
		if err != nil {
			log.WithError(err).Error("select cohort")
			return 1
		}
		selected = &c
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Warn("cancelling run")
		cancel()
	}()

	metrics := observability.NewMetrics("", nil)
	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, log)
	}

	stores, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("open stores")
		return 1
	}
	defer closeStores()

	// Partition state only describes outputs that outlive the process.
	if *skipUnchanged && !stores.durableOutputs {
		log.Warn("ledger outputs are in memory, disabling skip-unchanged")
		*skipUnchanged = false
	}

	if *loadFixtures {
		if err := fixtures.LoadFixtures(ctx, stores.assets, stores.classifications, stores.events, stores.prices); err != nil {
			log.WithError(err).Error("load fixtures")
			return 1
		}
		log.Info("demo fixtures loaded")
	}

	pricingOpts := pricing.DefaultOptions()
	pricingOpts.Backfill = cfg.Run.BackfillPrices
	valuationOpts := valuation.DefaultOptions()
	valuationOpts.EmitPriceOnlyDays = cfg.Run.EmitPriceDays

	orch := orchestrator.New(orchestrator.Options{
		AssetStore:          stores.assets,
		ClassificationStore: stores.classifications,
		TransferEventStore:  stores.events,
		PriceStore:          stores.prices,
		NetTransferStore:    stores.netTransfers,
		BalanceStore:        stores.balances,
		ProfitStore:         stores.profits,
		PartitionStateStore: stores.partitionState,
		ExclusionCache:      stores.exclusionCache,
		ExclusionCacheTTL:   cfg.Cache.ExclusionTTL,
		ExclusionPolicy:     policy.Exclusion,
		DeniedWallets:       policy.DeniedWallets,
		Sources:             policy.Sources,
		Cohort:              selected,
		Screen:              accrual.DefaultScreenOptions(),
		Pricing:             pricingOpts,
		Valuation:           valuationOpts,
		Validation: validation.Options{
			AbsTolerance:    cfg.Validation.AbsToleranceUSD,
			RelTolerance:    cfg.Validation.RelTolerance,
			InflowTolerance: cfg.Validation.InflowTolerance,
			FreshnessDays:   cfg.Validation.FreshnessDays,
		},
		Workers:       cfg.Run.Workers,
		DropFlagged:   cfg.Run.DropFlagged,
		SkipUnchanged: *skipUnchanged,
		Metrics:       metrics,
		Log:           log,
	})

	report, err := orch.Run(ctx)
	if err != nil {
		log.WithError(err).Error("run failed")
		return 1
	}
	if err := report.WriteText(os.Stdout); err != nil {
		log.WithError(err).Error("write report")
	}
	if *outputDir != "" {
		if err := writeReports(ctx, *outputDir, stores.profits, report, log); err != nil {
			log.WithError(err).Error("write report files")
		}
	}
	if report.Failed() {
		return 1
	}
	return 0
}

func writeReports(ctx context.Context, dir string, profits storage.ProfitStore, run *orchestrator.RunReport, log logrus.FieldLogger) error {
	r, err := reporting.NewGenerator(profits).Generate(ctx, run)
	if err != nil {
		return err
	}
	written, err := reporting.WriteFiles(dir, r)
	if err != nil {
		return err
	}
	for _, path := range written {
		log.WithField("path", path).Info("report written")
	}
	return nil
}

func serveMetrics(addr string, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.WithField("addr", addr).Info("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}

type ledgerStores struct {
	assets          storage.AssetStore
	classifications storage.ClassificationStore
	events          storage.TransferEventStore
	prices          storage.PriceStore
	netTransfers    storage.NetTransferStore
	balances        storage.BalanceStore
	profits         storage.ProfitStore
	partitionState  storage.PartitionStateStore
	exclusionCache  storage.ExclusionCache
	durableOutputs  bool // net transfers, balances and profits survive the process
}

// openStores wires PostgreSQL inputs, ClickHouse outputs and the Redis cache
// when configured, falling back to memory stores for each missing backend.
func openStores(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*ledgerStores, func(), error) {
	s := &ledgerStores{
		assets:          memory.NewAssetStore(),
		classifications: memory.NewClassificationStore(),
		events:          memory.NewTransferEventStore(),
		prices:          memory.NewPriceStore(),
		netTransfers:    memory.NewNetTransferStore(),
		balances:        memory.NewBalanceStore(),
		profits:         memory.NewProfitStore(),
		partitionState:  memory.NewPartitionStateStore(),
		exclusionCache:  memory.NewExclusionCache(),
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if dsn := cfg.Database.PostgresDSN; dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		s.assets = pgstore.NewAssetStore(pool)
		s.classifications = pgstore.NewClassificationStore(pool)
		s.events = pgstore.NewTransferEventStore(pool)
		s.prices = pgstore.NewPriceStore(pool)
		s.partitionState = pgstore.NewPartitionStateStore(pool)
		log.Info("using postgres input stores")
	}

	if dsn := cfg.Database.ClickHouseDSN; dsn != "" {
		conn, err := chstore.NewConn(ctx, dsn)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		s.netTransfers = chstore.NewNetTransferStore(conn)
		s.balances = chstore.NewBalanceStore(conn)
		s.profits = chstore.NewProfitStore(conn)
		s.durableOutputs = true
		log.Info("using clickhouse ledger stores")
	}

	if addr := cfg.Database.RedisAddr; addr != "" {
		client, err := redisstore.NewClient(ctx, addr)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		s.exclusionCache = redisstore.NewExclusionCache(client)
		log.Info("using redis exclusion cache")
	}

	return s, closeAll, nil
}
