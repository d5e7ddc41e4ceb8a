// Package main applies PostgreSQL and ClickHouse schema migrations.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"coin-wallet-ledger/internal/config"
	"coin-wallet-ledger/internal/logging"
	chstore "coin-wallet-ledger/internal/storage/clickhouse"
	"coin-wallet-ledger/internal/storage/migrations"
	pgstore "coin-wallet-ledger/internal/storage/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "text").WithError(err).Error("load config")
		return 1
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if cfg.Database.PostgresDSN == "" && cfg.Database.ClickHouseDSN == "" {
		log.Error("neither POSTGRES_DSN nor CLICKHOUSE_DSN is set")
		return 1
	}

	if dsn := cfg.Database.PostgresDSN; dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			log.WithError(err).Error("connect postgres")
			return 1
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.WithError(err).Error("postgres migrations")
			return 1
		}
		log.Info("postgres migrations applied")
	}

	if dsn := cfg.Database.ClickHouseDSN; dsn != "" {
		if err := chstore.EnsureDatabase(ctx, dsn); err != nil {
			log.WithError(err).Error("create clickhouse database")
			return 1
		}
		conn, err := chstore.NewConn(ctx, dsn)
		if err != nil {
			log.WithError(err).Error("connect clickhouse")
			return 1
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			log.WithError(err).Error("clickhouse migrations")
			return 1
		}
		log.Info("clickhouse migrations applied")
	}
	return 0
}
