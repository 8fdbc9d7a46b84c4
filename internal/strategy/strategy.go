// Package strategy implements the per-day stepping units of the simulation:
// the account ledger and the closed set of strategy variants that turn price
// history into broker commands and ledger mutations.
package strategy

import (
	"fmt"
	"log/slog"
	"sort"

	"kisquant/internal/kis"
	"kisquant/internal/signal"
	"kisquant/internal/store"
)

// Kind tags a strategy variant. The set is closed and small; Step dispatches
// over it with a switch rather than an open interface hierarchy.
type Kind int

const (
	// KindTest exercises every command kind against a fixed symbol. It
	// carries no trading logic.
	KindTest Kind = iota
	// KindPriceMomentum ranks every symbol by trailing return and buys the
	// strongest, settling each signal at the next day's open.
	KindPriceMomentum
)

func (k Kind) String() string {
	switch k {
	case KindTest:
		return "test"
	case KindPriceMomentum:
		return "price-momentum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// testSymbol is the fixed stock the test variant targets (Samsung
// Electronics).
const testSymbol = "005930"

// Momentum window defaults: rank by the 240-day trailing return measured
// one day back.
const (
	defaultSkip    = 1
	defaultHorizon = 240
)

// Strategy is one stepping unit of the backtest. Each strategy owns its
// Account for the duration of a run.
type Strategy struct {
	Kind    Kind
	Account *Account

	skip    int
	horizon int
	log     *slog.Logger
}

// NewTest creates the command-surface test strategy.
func NewTest(account *Account) *Strategy {
	return &Strategy{
		Kind:    KindTest,
		Account: account,
		log:     slog.Default().With("strategy", KindTest.String()),
	}
}

// NewPriceMomentum creates the momentum strategy with the default ranking
// window.
func NewPriceMomentum(account *Account) *Strategy {
	return NewPriceMomentumWindow(account, defaultSkip, defaultHorizon)
}

// NewPriceMomentumWindow creates the momentum strategy with an explicit
// skip/horizon window.
func NewPriceMomentumWindow(account *Account, skip, horizon int) *Strategy {
	return &Strategy{
		Kind:    KindPriceMomentum,
		Account: account,
		skip:    skip,
		horizon: horizon,
		log:     slog.Default().With("strategy", KindPriceMomentum.String()),
	}
}

// Step advances the strategy by one simulated trading day. idx is the offset
// back from the store's most recent day: 0 is "today". The returned commands
// (possibly nil) are for the caller to dispatch or discard; a nil slice with
// a nil error is a no-op day.
func (s *Strategy) Step(idx int, ts *store.TimeSeriesStore) ([]kis.Command, error) {
	switch s.Kind {
	case KindTest:
		return s.stepTest()
	case KindPriceMomentum:
		return s.stepPriceMomentum(idx, ts)
	default:
		return nil, fmt.Errorf("unknown strategy kind %d", int(s.Kind))
	}
}

// stepTest returns the fixed five-command bundle covering every command
// kind. It never signals completion.
func (s *Strategy) stepTest() ([]kis.Command, error) {
	a := s.Account
	return []kis.Command{
		kis.NewPriceCommand(testSymbol),
		kis.NewDailyPriceCommand(testSymbol, kis.PeriodDay),
		kis.NewBalanceCommand(a.AccountNo, a.AccountCd),
		kis.NewOrderBuyCommand(a.AccountNo, a.AccountCd, testSymbol, 1),
		kis.NewOrderSellCommand(a.AccountNo, a.AccountCd, testSymbol, 1),
	}, nil
}

// ranked is one (momentum, symbol) candidate from the ranking phase.
type ranked struct {
	momentum float64
	symbol   string
}

// stepPriceMomentum runs the two phases of one momentum day: rank every
// symbol with enough history at idx, then either emit today's buy order
// (idx == 0) or settle yesterday's signal at the next day's open.
func (s *Strategy) stepPriceMomentum(idx int, ts *store.TimeSeriesStore) ([]kis.Command, error) {
	best, ok, err := s.rank(idx, ts)
	if err != nil {
		return nil, err
	}
	if !ok {
		// No symbol has a defined momentum at this offset; the day is a
		// no-op, not an error.
		return nil, nil
	}

	if idx == 0 {
		// Signal generated today; execution happens off-ledger.
		s.log.Debug("momentum buy signal", "symbol", best.symbol, "momentum", best.momentum)
		a := s.Account
		return []kis.Command{
			kis.NewOrderBuyCommand(a.AccountNo, a.AccountCd, best.symbol, 1),
		}, nil
	}

	// Settle yesterday's signal at the next day's open.
	view, err := ts.FromLatest(best.symbol)
	if err != nil {
		return nil, err
	}
	open := view[idx-1].Open
	if s.Account.Cash < open {
		s.log.Debug("settlement skipped, insufficient cash",
			"symbol", best.symbol, "open", open, "cash", s.Account.Cash)
		return nil, nil
	}
	if err := s.Account.Buy(best.symbol); err != nil {
		return nil, err
	}
	s.Account.Cash -= open
	return nil, nil
}

// rank computes momentum for every manifest symbol with a bar window at idx
// and returns the highest-ranked candidate. Determinism does not depend on
// manifest order: ties sort by symbol.
func (s *Strategy) rank(idx int, ts *store.TimeSeriesStore) (ranked, bool, error) {
	var candidates []ranked
	for _, sym := range ts.Symbols() {
		window, err := ts.Window(sym, idx)
		if err != nil {
			return ranked{}, false, err
		}
		if len(window) == 0 {
			continue
		}
		m, ok, err := signal.Momentum(window, s.skip, s.horizon)
		if err != nil {
			return ranked{}, false, err
		}
		if !ok {
			continue
		}
		candidates = append(candidates, ranked{momentum: m, symbol: sym})
	}
	if len(candidates) == 0 {
		return ranked{}, false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].momentum != candidates[j].momentum {
			return candidates[i].momentum < candidates[j].momentum
		}
		return candidates[i].symbol < candidates[j].symbol
	})
	return candidates[len(candidates)-1], true, nil
}
