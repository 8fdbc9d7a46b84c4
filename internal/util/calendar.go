package util

import "time"

// krxOpenHour etc. describe the KRX regular session, 09:00-15:30 KST.
const (
	krxOpenHour    = 9
	krxCloseHour   = 15
	krxCloseMinute = 30
)

// TradingCalendar provides market-hours awareness for the KRX regular
// session. Exchange holidays are not modeled; orders on a holiday are
// rejected by the broker instead.
type TradingCalendar struct {
	loc *time.Location
}

// NewTradingCalendar creates a calendar pinned to Asia/Seoul. It falls back
// to a fixed KST offset when the zone database is unavailable.
func NewTradingCalendar() *TradingCalendar {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &TradingCalendar{loc: loc}
}

// IsMarketOpen returns whether the regular session is open at time t.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	t = t.In(tc.loc)
	if !isWeekday(t) {
		return false
	}
	open := time.Date(t.Year(), t.Month(), t.Day(), krxOpenHour, 0, 0, 0, tc.loc)
	close := time.Date(t.Year(), t.Month(), t.Day(), krxCloseHour, krxCloseMinute, 0, 0, tc.loc)
	return !t.Before(open) && t.Before(close)
}

// NextOpen returns the next session open at or after t.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	t = t.In(tc.loc)
	for {
		open := time.Date(t.Year(), t.Month(), t.Day(), krxOpenHour, 0, 0, 0, tc.loc)
		if isWeekday(open) && !open.Before(t) {
			return open
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tc.loc).AddDate(0, 0, 1)
	}
}

// NextClose returns the next session close at or after t.
func (tc *TradingCalendar) NextClose(t time.Time) time.Time {
	t = t.In(tc.loc)
	for {
		close := time.Date(t.Year(), t.Month(), t.Day(), krxCloseHour, krxCloseMinute, 0, 0, tc.loc)
		if isWeekday(close) && !close.Before(t) {
			return close
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tc.loc).AddDate(0, 0, 1)
	}
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
