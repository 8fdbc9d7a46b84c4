// Package store owns the local daily price history: the symbol manifest, the
// per-symbol bar sequences loaded from CSV, and the reference trading
// calendar used to translate dates into step offsets.
//
// Ordering convention: Bars returns each sequence oldest-first (ascending by
// date). FromLatest returns the cached latest-first view used wherever an
// offset means "this many days back from the most recent bar". The native
// row order of the data files is not trusted; sequences are normalized at
// load time.
package store

import (
	"fmt"
	"sort"

	"kisquant/internal/domain"
)

// TimeSeriesStore loads and caches daily bar data for the symbols in the
// manifest. It is owned by a single runner for the duration of a run; no
// concurrent access is supported.
type TimeSeriesStore struct {
	dataDir string
	symbols []string

	bars     map[string][]domain.Bar // ascending by date
	latest   map[string][]domain.Bar // descending view, [0] = most recent
	refDates []int                   // ascending, from the first manifest symbol
}

// NewTimeSeriesStore loads the manifest at manifestPath and returns a store
// that lazily reads per-symbol bar files from dataDir.
func NewTimeSeriesStore(dataDir, manifestPath string) (*TimeSeriesStore, error) {
	symbols, err := LoadSymbols(manifestPath)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("manifest %s lists no symbols", manifestPath)
	}

	return &TimeSeriesStore{
		dataDir: dataDir,
		symbols: symbols,
		bars:    make(map[string][]domain.Bar),
		latest:  make(map[string][]domain.Bar),
	}, nil
}

// Symbols returns the manifest symbols in load order. The returned slice is
// shared; callers must not modify it.
func (s *TimeSeriesStore) Symbols() []string {
	return s.symbols
}

// Bars returns the symbol's bar sequence oldest-first. The first call reads
// and validates the backing file; later calls return the cached sequence.
func (s *TimeSeriesStore) Bars(symbol string) ([]domain.Bar, error) {
	if cached, ok := s.bars[symbol]; ok {
		return cached, nil
	}

	bars, err := readBars(s.dataDir, symbol)
	if err != nil {
		return nil, err
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	for i := 1; i < len(bars); i++ {
		if bars[i].Date == bars[i-1].Date {
			return nil, &MalformedRecordError{
				Symbol: symbol, Row: i + 1,
				Err: fmt.Errorf("duplicate date %d", bars[i].Date),
			}
		}
	}

	view := make([]domain.Bar, len(bars))
	for i, b := range bars {
		view[len(bars)-1-i] = b
	}

	s.bars[symbol] = bars
	s.latest[symbol] = view
	return bars, nil
}

// FromLatest returns the symbol's bar sequence newest-first: index 0 is the
// most recent available day, increasing index moves further into the past.
func (s *TimeSeriesStore) FromLatest(symbol string) ([]domain.Bar, error) {
	if _, err := s.Bars(symbol); err != nil {
		return nil, err
	}
	return s.latest[symbol], nil
}

// Window returns the latest-first bar sequence starting idx days back from
// the symbol's most recent bar, or nil when fewer than idx+1 bars exist.
func (s *TimeSeriesStore) Window(symbol string, idx int) ([]domain.Bar, error) {
	view, err := s.FromLatest(symbol)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(view) {
		return nil, nil
	}
	return view[idx:], nil
}

// ReferenceDates returns the canonical trading calendar: the ascending date
// integers of the first manifest symbol's bars.
func (s *TimeSeriesStore) ReferenceDates() ([]int, error) {
	if s.refDates != nil {
		return s.refDates, nil
	}
	bars, err := s.Bars(s.symbols[0])
	if err != nil {
		return nil, err
	}
	dates := make([]int, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
	}
	s.refDates = dates
	return dates, nil
}

// IndexForDate resolves a calendar date to its position in the ascending
// reference calendar. The binary search treats an element equal to the query
// as greater, so the result is always the insertion point: the position of
// the first reference date that is not less than date. For two distinct
// dates present in the calendar the resolved positions are strictly
// increasing with the dates.
func (s *TimeSeriesStore) IndexForDate(date int) (int, error) {
	dates, err := s.ReferenceDates()
	if err != nil {
		return 0, err
	}
	return sort.Search(len(dates), func(i int) bool { return dates[i] >= date }), nil
}

// DaysBack translates a calendar date to the "days back from the latest
// reference date" offset used by strategy stepping: 0 is the most recent
// trading day, len-1 the oldest.
func (s *TimeSeriesStore) DaysBack(date int) (int, error) {
	dates, err := s.ReferenceDates()
	if err != nil {
		return 0, err
	}
	pos, err := s.IndexForDate(date)
	if err != nil {
		return 0, err
	}
	if pos >= len(dates) {
		return 0, fmt.Errorf("date %d is after the last reference date %d", date, dates[len(dates)-1])
	}
	return len(dates) - 1 - pos, nil
}
