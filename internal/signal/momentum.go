// Package signal provides the pure ranking signals used by the backtest
// strategies.
package signal

import (
	"fmt"

	"kisquant/internal/domain"
)

// Momentum computes the trailing total return over a latest-first bar
// window: close[skip] / close[horizon] - 1, comparing the close price skip
// days back to the close price horizon days back. window[0] must be the most
// recent bar.
//
// The second return value is false when the window holds horizon or fewer
// bars — insufficient history is a normal "no signal" outcome, not an error.
// A zero close at the horizon position is an error; it is never masked.
func Momentum(window []domain.Bar, skip, horizon int) (float64, bool, error) {
	if skip < 0 || horizon <= skip {
		return 0, false, fmt.Errorf("invalid momentum parameters skip=%d horizon=%d", skip, horizon)
	}
	if len(window) <= horizon {
		return 0, false, nil
	}

	base := window[horizon].Close
	if base == 0 {
		return 0, false, fmt.Errorf("zero close price at horizon %d (date %d)", horizon, window[horizon].Date)
	}

	return float64(window[skip].Close)/float64(base) - 1.0, true, nil
}
