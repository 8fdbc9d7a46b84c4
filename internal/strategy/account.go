package strategy

import (
	"fmt"
	"math"
)

// Account is the mutable simulation ledger: a cash balance in KRW minor
// units plus per-symbol holdings. AccountNo and AccountCd are opaque broker
// identifiers passed through to command construction only.
type Account struct {
	AccountNo string
	AccountCd string
	Cash      int64
	Holdings  map[string]uint64
}

// NewAccount creates an Account with the given identifiers and starting
// cash.
func NewAccount(accountNo, accountCd string, cash int64) *Account {
	return &Account{
		AccountNo: accountNo,
		AccountCd: accountCd,
		Cash:      cash,
		Holdings:  make(map[string]uint64),
	}
}

// Clone returns an independent copy of the account, so each strategy variant
// can mutate its own ledger.
func (a *Account) Clone() *Account {
	holdings := make(map[string]uint64, len(a.Holdings))
	for sym, qty := range a.Holdings {
		holdings[sym] = qty
	}
	return &Account{
		AccountNo: a.AccountNo,
		AccountCd: a.AccountCd,
		Cash:      a.Cash,
		Holdings:  holdings,
	}
}

// Buy credits one unit of the symbol. Holdings quantities never wrap; an
// overflow is surfaced, not clamped.
func (a *Account) Buy(symbol string) error {
	if a.Holdings[symbol] == math.MaxUint64 {
		return fmt.Errorf("holdings overflow for %s", symbol)
	}
	a.Holdings[symbol]++
	return nil
}
