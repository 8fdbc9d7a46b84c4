// Package backtest drives the historical simulation: it resolves the
// requested date range against the store's reference calendar, steps every
// active strategy once per trading day, and values each account at the end.
package backtest

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"kisquant/internal/kis"
	"kisquant/internal/store"
	"kisquant/internal/strategy"
)

// CommandSink receives the commands a strategy emitted at a given step.
// Dispatch is an extension point of the simulation, not a requirement:
// commands that are generated but never dispatched are a valid terminal
// state, and a Runner without a sink simply collects them.
type CommandSink interface {
	Record(idx int, commands []kis.Command) error
}

// Result is the final valuation of one strategy's account: market value of
// holdings at the most recent open, remaining cash, and their sum.
type Result struct {
	Strategy   string
	StockValue int64
	Cash       int64
	Total      int64
}

// Runner owns the store and the active strategies for the duration of one
// simulation. Single-threaded by design: strategies mutate their accounts in
// step order.
type Runner struct {
	store      *store.TimeSeriesStore
	strategies []*strategy.Strategy
	sink       CommandSink
	progress   bool
	log        *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink routes emitted commands to the given sink.
func WithSink(sink CommandSink) Option {
	return func(r *Runner) { r.sink = sink }
}

// WithProgress renders a progress bar over the simulated range.
func WithProgress() Option {
	return func(r *Runner) { r.progress = true }
}

// NewRunner creates a Runner over the given store and strategies.
func NewRunner(ts *store.TimeSeriesStore, strategies []*strategy.Strategy, opts ...Option) *Runner {
	r := &Runner{
		store:      ts,
		strategies: strategies,
		log:        slog.Default().With("component", "backtest"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run simulates the inclusive date range. Both bounds are YYYYMMDD integers
// resolved through the reference calendar; the loop walks from the start
// date's offset down to the end date's, i.e. forward in time, stepping every
// strategy once per trading day. It returns the final valuation per
// strategy.
func (r *Runner) Run(startDate, endDate int) ([]Result, error) {
	startIdx, err := r.store.DaysBack(startDate)
	if err != nil {
		return nil, fmt.Errorf("resolving start date: %w", err)
	}
	endIdx, err := r.store.DaysBack(endDate)
	if err != nil {
		return nil, fmt.Errorf("resolving end date: %w", err)
	}
	if startIdx < endIdx {
		return nil, fmt.Errorf("start date %d is after end date %d", startDate, endDate)
	}

	var bar *progressbar.ProgressBar
	if r.progress {
		bar = newProgressBar(startIdx - endIdx + 1)
	}

	r.log.Info("backtest starting",
		"startDate", startDate, "endDate", endDate,
		"steps", startIdx-endIdx+1, "strategies", len(r.strategies))

	for idx := startIdx; idx >= endIdx; idx-- {
		for _, st := range r.strategies {
			cmds, err := st.Step(idx, r.store)
			if err != nil {
				return nil, fmt.Errorf("strategy %s at offset %d: %w", st.Kind, idx, err)
			}
			if r.sink != nil && len(cmds) > 0 {
				if err := r.sink.Record(idx, cmds); err != nil {
					return nil, fmt.Errorf("recording commands at offset %d: %w", idx, err)
				}
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	results := make([]Result, 0, len(r.strategies))
	for _, st := range r.strategies {
		res, err := r.value(st)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// value computes a strategy's final valuation: every held unit at the most
// recent open price, plus remaining cash.
func (r *Runner) value(st *strategy.Strategy) (Result, error) {
	var stock int64
	for sym, qty := range st.Account.Holdings {
		view, err := r.store.FromLatest(sym)
		if err != nil {
			return Result{}, err
		}
		if len(view) == 0 {
			return Result{}, fmt.Errorf("no bars for held symbol %s", sym)
		}
		stock += int64(qty) * view[0].Open
	}
	return Result{
		Strategy:   st.Kind.String(),
		StockValue: stock,
		Cash:       st.Account.Cash,
		Total:      stock + st.Account.Cash,
	}, nil
}

// Report prints one human-readable summary line per strategy.
func Report(results []Result) {
	for _, res := range results {
		fmt.Printf("%-16s stock=%d cash=%d total=%d\n",
			res.Strategy, res.StockValue, res.Cash, res.Total)
	}
}

func newProgressBar(steps int) *progressbar.ProgressBar {
	return progressbar.NewOptions(steps,
		progressbar.OptionSetDescription("backtesting"),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
}
