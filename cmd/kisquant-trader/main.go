// Dispatches the test-strategy command bundle through an authenticated KIS
// session and journals every dispatch with its response code.
//
// Usage:
//
//	KISQUANT_CONFIG=config/kisquant.yaml go run cmd/kisquant-trader/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kisquant/internal/config"
	"kisquant/internal/journal"
	"kisquant/internal/kis"
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
	if err := cfg.ValidateKIS(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	calendar := util.NewTradingCalendar()
	if !calendar.IsMarketOpen(time.Now()) {
		logger.Warn("market is closed, orders may be queued or rejected",
			"next_open", calendar.NextOpen(time.Now()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ts, err := store.NewTimeSeriesStore(cfg.Storage.DataDir, cfg.Storage.SymbolsFile)
	if err != nil {
		log.Fatalf("failed to open price store: %v", err)
	}

	account := strategy.NewAccount(cfg.KIS.AccountNo, cfg.KIS.AccountCd, 0)
	commands, err := strategy.NewTest(account).Step(0, ts)
	if err != nil {
		log.Fatalf("failed to build command bundle: %v", err)
	}

	session, err := kis.NewSession(ctx, cfg.KIS.AppKey, cfg.KIS.AppSecret, cfg.KIS.Domain, cfg.Gather.RateLimitPerMin)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}

	var j *journal.Journal
	if cfg.Storage.SQLitePath != "" {
		if j, err = journal.Open(cfg.Storage.SQLitePath); err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()
		logger.Info("journaling dispatches", "run_id", j.RunID())
	}

	for _, cmd := range commands {
		res, err := session.Execute(ctx, cmd)
		if err != nil {
			log.Fatalf("dispatch %s failed: %v", cmd.TrID, err)
		}
		logger.Info("dispatched", "tr_id", cmd.TrID, "path", cmd.Path)
		if j != nil {
			if err := j.RecordDispatch(cmd, res); err != nil {
				log.Fatalf("failed to journal dispatch: %v", err)
			}
		}
	}

	logger.Info("bundle complete", "commands", len(commands))
}
