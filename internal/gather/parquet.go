package gather

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"kisquant/internal/domain"
)

// BarRecord is the Parquet schema for archived daily bar data.
type BarRecord struct {
	Symbol      string  `parquet:"symbol"`
	Date        int32   `parquet:"date"` // YYYYMMDD
	Open        int64   `parquet:"open"`
	High        int64   `parquet:"high"`
	Low         int64   `parquet:"low"`
	Close       int64   `parquet:"close"`
	Volume      int64   `parquet:"volume"`
	Amount      int64   `parquet:"amount"`
	Performance float64 `parquet:"performance"`
}

// ParquetArchive keeps a year-partitioned Parquet copy of gathered bars.
// Each symbol+year combination is a separate file at:
//
//	<DataDir>/<SYMBOL>/<YYYY>.parquet
type ParquetArchive struct {
	DataDir string
}

// NewParquetArchive creates an archive rooted at the given directory.
func NewParquetArchive(dataDir string) *ParquetArchive {
	return &ParquetArchive{DataDir: dataDir}
}

// WriteBars archives bars for one symbol, merging with any records already
// on disk. Incoming records win on date collisions.
func (a *ParquetArchive) WriteBars(symbol string, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	groups := make(map[int][]BarRecord)
	for _, b := range bars {
		year := b.Date / 10000
		groups[year] = append(groups[year], BarRecord{
			Symbol:      symbol,
			Date:        int32(b.Date),
			Open:        b.Open,
			High:        b.High,
			Low:         b.Low,
			Close:       b.Close,
			Volume:      int64(b.Volume),
			Amount:      int64(b.Amount),
			Performance: b.Performance,
		})
	}

	for year, records := range groups {
		path := a.barPath(symbol, year)

		existing, _ := readParquetFile[BarRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("archiving bars for %s/%d: %w", symbol, year, err)
		}
	}
	return nil
}

// ReadBars reads archived bars for the given symbol and inclusive YYYYMMDD
// date range. Years with no archive file are skipped.
func (a *ParquetArchive) ReadBars(symbol string, startDate, endDate int) ([]domain.Bar, error) {
	var bars []domain.Bar
	for year := startDate / 10000; year <= endDate/10000; year++ {
		records, err := readParquetFile[BarRecord](a.barPath(symbol, year))
		if err != nil {
			continue
		}
		for _, r := range records {
			d := int(r.Date)
			if d < startDate || d > endDate {
				continue
			}
			bars = append(bars, domain.Bar{
				Date:        d,
				Open:        r.Open,
				High:        r.High,
				Low:         r.Low,
				Close:       r.Close,
				Volume:      uint64(r.Volume),
				Amount:      uint64(r.Amount),
				Performance: r.Performance,
			})
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars, nil
}

// ListSymbols lists all symbols present in the archive.
func (a *ParquetArchive) ListSymbols() ([]string, error) {
	entries, err := os.ReadDir(a.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// barPath returns the filesystem path for a symbol's year file.
func (a *ParquetArchive) barPath(symbol string, year int) string {
	return filepath.Join(a.DataDir, symbol, fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates records by (symbol, date), preferring new
// records over existing ones. Results are sorted by date.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		symbol string
		date   int32
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Date}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Date}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged
}
