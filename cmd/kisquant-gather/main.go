// Fetches daily price history from the KIS open API into per-symbol CSV
// files plus a Parquet archive. Runs once by default; with gather.cron set
// it keeps running on the schedule until interrupted.
//
// Usage:
//
//	KISQUANT_CONFIG=config/kisquant.yaml go run cmd/kisquant-gather/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kisquant/internal/config"
	"kisquant/internal/gather"
	"kisquant/internal/kis"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := kis.NewSession(ctx, cfg.KIS.AppKey, cfg.KIS.AppSecret, cfg.KIS.Domain, cfg.Gather.RateLimitPerMin)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}

	g := gather.NewDailyPriceGatherer(
		session,
		cfg.Storage.DataDir,
		cfg.Storage.SymbolsFile,
		cfg.Storage.ParquetDir,
		cfg.Gather.StartDate,
		cfg.Gather.EndDate,
	)

	if cfg.Gather.Cron == "" {
		if err := g.Run(ctx); err != nil {
			log.Fatalf("gather failed: %v", err)
		}
		return
	}

	sched := gather.NewScheduler(ctx)
	if err := sched.Register(cfg.Gather.Cron, g); err != nil {
		log.Fatalf("failed to schedule gather: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	logger.Info("gather scheduled", "cron", cfg.Gather.Cron)
	<-ctx.Done()
}
