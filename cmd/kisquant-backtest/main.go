// Runs the backtest over local CSV price data and prints the final account
// valuation per strategy.
//
// Usage:
//
//	KISQUANT_CONFIG=config/kisquant.yaml go run cmd/kisquant-backtest/main.go
package main

import (
	"log"
	"os"

	"kisquant/internal/backtest"
	"kisquant/internal/config"
	"kisquant/internal/journal"
	"kisquant/internal/store"
	"kisquant/internal/strategy"
	"kisquant/internal/util"
)

func main() {
	cfgPath := "config/kisquant.yaml"
	if p := os.Getenv("KISQUANT_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	ts, err := store.NewTimeSeriesStore(cfg.Storage.DataDir, cfg.Storage.SymbolsFile)
	if err != nil {
		log.Fatalf("failed to open price store: %v", err)
	}

	account := strategy.NewAccount(cfg.KIS.AccountNo, cfg.KIS.AccountCd, cfg.Backtest.InitialCash)
	strategies := []*strategy.Strategy{
		strategy.NewPriceMomentumWindow(account, cfg.Backtest.Skip, cfg.Backtest.Horizon),
	}

	opts := []backtest.Option{backtest.WithProgress()}
	if cfg.Storage.SQLitePath != "" {
		j, err := journal.Open(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()
		logger.Info("journaling commands", "run_id", j.RunID())
		opts = append(opts, backtest.WithSink(j))
	}

	runner := backtest.NewRunner(ts, strategies, opts...)
	results, err := runner.Run(cfg.Backtest.StartDate, cfg.Backtest.EndDate)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	backtest.Report(results)
}
