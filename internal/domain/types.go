// Package domain defines the shared market-data types used across the
// kisquant backtest core and the KIS gathering tools.
package domain

import (
	"fmt"
	"time"
)

// Bar is one trading day's OHLCV record for a single symbol. Prices are in
// KRW minor units, Date is an 8-digit YYYYMMDD integer.
type Bar struct {
	Date        int
	Open        int64
	High        int64
	Low         int64
	Close       int64
	Volume      uint64
	Amount      uint64
	Performance float64
}

// ValidDate reports whether d is a plausible 8-digit YYYYMMDD date integer.
func ValidDate(d int) bool {
	if d < 10000101 || d > 99991231 {
		return false
	}
	month := d / 100 % 100
	day := d % 100
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	return true
}

// ParseDate converts an 8-digit YYYYMMDD integer to a time.Time in UTC.
func ParseDate(d int) (time.Time, error) {
	if !ValidDate(d) {
		return time.Time{}, fmt.Errorf("invalid date integer %d", d)
	}
	return time.Date(d/10000, time.Month(d/100%100), d%100, 0, 0, 0, 0, time.UTC), nil
}

// FormatDate converts a time.Time to the canonical YYYYMMDD integer.
func FormatDate(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
