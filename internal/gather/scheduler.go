package gather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs registered gatherers on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	log  *slog.Logger
}

// NewScheduler creates a scheduler whose tasks inherit the given context.
func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		ctx:  ctx,
		log:  slog.Default().With("component", "scheduler"),
	}
}

// Register schedules a gatherer with the given cron spec.
func (s *Scheduler) Register(spec string, g Gatherer) error {
	if _, err := s.cron.AddFunc(spec, func() { s.runOnce(g) }); err != nil {
		return fmt.Errorf("register %s task: %w", g.Name(), err)
	}
	return nil
}

// RunNow executes a gatherer immediately, outside its schedule.
func (s *Scheduler) RunNow(g Gatherer) {
	s.runOnce(g)
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(g Gatherer) {
	s.log.Info("gather run starting", "gatherer", g.Name())
	if err := g.Run(s.ctx); err != nil {
		s.log.Error("gather run failed", "gatherer", g.Name(), "error", err)
		return
	}
	s.log.Info("gather run finished", "gatherer", g.Name())
}
