package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"kisquant/internal/domain"
)

// Daily bar files are space-separated with a fixed column order. The header
// row is required; column names beyond position are not significant.
var barHeader = []string{
	"date", "open_price", "high_price", "low_price",
	"close_price", "volume", "amount", "performance",
}

// BarPath returns the canonical path of a symbol's daily bar file.
func BarPath(dataDir, symbol string) string {
	return filepath.Join(dataDir, symbol+".csv")
}

// LoadSymbols reads the manifest CSV and returns the symbols in file order.
// Only the first column is significant; the file must have a header row.
func LoadSymbols(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	if len(records) < 2 {
		return nil, nil
	}

	symbols := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) == 0 {
			continue
		}
		sym := strings.TrimSpace(row[0])
		if sym != "" {
			symbols = append(symbols, sym)
		}
	}
	return symbols, nil
}

// readBars parses one symbol's daily bar file. Every row is validated; any
// parse failure aborts the load with a MalformedRecordError.
func readBars(dataDir, symbol string) ([]domain.Bar, error) {
	path := BarPath(dataDir, symbol)
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataUnavailableError{Symbol: symbol, Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ' '
	records, err := r.ReadAll()
	if err != nil {
		return nil, &DataUnavailableError{Symbol: symbol, Path: path, Err: err}
	}
	if len(records) == 0 {
		return nil, &DataUnavailableError{Symbol: symbol, Path: path, Err: fmt.Errorf("empty file")}
	}
	if len(records[0]) != len(barHeader) {
		return nil, &DataUnavailableError{
			Symbol: symbol, Path: path,
			Err: fmt.Errorf("header has %d columns, want %d", len(records[0]), len(barHeader)),
		}
	}

	bars := make([]domain.Bar, 0, len(records)-1)
	for i, row := range records[1:] {
		bar, err := parseBarRow(row)
		if err != nil {
			return nil, &MalformedRecordError{Symbol: symbol, Row: i + 1, Err: err}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRow(row []string) (domain.Bar, error) {
	var bar domain.Bar
	if len(row) != len(barHeader) {
		return bar, fmt.Errorf("row has %d columns, want %d", len(row), len(barHeader))
	}

	date, err := strconv.Atoi(row[0])
	if err != nil {
		return bar, fmt.Errorf("date %q: %w", row[0], err)
	}
	if !domain.ValidDate(date) {
		return bar, fmt.Errorf("date %d is not a valid YYYYMMDD date", date)
	}
	bar.Date = date

	prices := []*int64{&bar.Open, &bar.High, &bar.Low, &bar.Close}
	for i, dst := range prices {
		v, err := strconv.ParseInt(row[1+i], 10, 64)
		if err != nil {
			return bar, fmt.Errorf("%s %q: %w", barHeader[1+i], row[1+i], err)
		}
		*dst = v
	}

	volume, err := strconv.ParseUint(row[5], 10, 64)
	if err != nil {
		return bar, fmt.Errorf("volume %q: %w", row[5], err)
	}
	bar.Volume = volume

	amount, err := strconv.ParseUint(row[6], 10, 64)
	if err != nil {
		return bar, fmt.Errorf("amount %q: %w", row[6], err)
	}
	bar.Amount = amount

	perf, err := strconv.ParseFloat(row[7], 64)
	if err != nil {
		return bar, fmt.Errorf("performance %q: %w", row[7], err)
	}
	bar.Performance = perf

	return bar, nil
}

// WriteBars writes a symbol's bars to the canonical daily bar file,
// replacing any existing file. Bars are written in the order given.
func WriteBars(dataDir, symbol string, bars []domain.Bar) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := BarPath(dataDir, symbol)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ' '
	if err := w.Write(barHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range bars {
		row := []string{
			strconv.Itoa(b.Date),
			strconv.FormatInt(b.Open, 10),
			strconv.FormatInt(b.High, 10),
			strconv.FormatInt(b.Low, 10),
			strconv.FormatInt(b.Close, 10),
			strconv.FormatUint(b.Volume, 10),
			strconv.FormatUint(b.Amount, 10),
			strconv.FormatFloat(b.Performance, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row for %s/%d: %w", symbol, b.Date, err)
		}
	}
	w.Flush()
	return w.Error()
}
