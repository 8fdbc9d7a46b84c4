package gather

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"kisquant/internal/domain"
	"kisquant/internal/kis"
	"kisquant/internal/store"
)

// Compile-time interface check.
var _ Gatherer = (*DailyPriceGatherer)(nil)

// Executor dispatches a single KIS command. *kis.Session satisfies it.
type Executor interface {
	Execute(ctx context.Context, cmd kis.Command) (map[string]any, error)
}

// DailyPriceGatherer fetches the date-ranged daily chart for every manifest
// symbol and writes each symbol's bars as a store CSV file, plus a Parquet
// archive when an archive directory is configured.
type DailyPriceGatherer struct {
	executor     Executor
	dataDir      string
	manifestPath string
	archive      *ParquetArchive // nil disables archiving
	startDate    int
	endDate      int
	log          *slog.Logger
}

// NewDailyPriceGatherer creates a gatherer for the inclusive YYYYMMDD date
// range. archiveDir may be empty to skip the Parquet archive.
func NewDailyPriceGatherer(executor Executor, dataDir, manifestPath, archiveDir string, startDate, endDate int) *DailyPriceGatherer {
	g := &DailyPriceGatherer{
		executor:     executor,
		dataDir:      dataDir,
		manifestPath: manifestPath,
		startDate:    startDate,
		endDate:      endDate,
		log:          slog.Default().With("gatherer", "kis-daily"),
	}
	if archiveDir != "" {
		g.archive = NewParquetArchive(archiveDir)
	}
	return g
}

// Name returns the gatherer identifier.
func (g *DailyPriceGatherer) Name() string { return "kis-daily" }

// Run fetches and persists daily bars for every manifest symbol in order.
// A failed symbol aborts the pass; partial files from earlier symbols remain
// valid, so a rerun resumes safely by overwriting.
func (g *DailyPriceGatherer) Run(ctx context.Context) error {
	symbols, err := store.LoadSymbols(g.manifestPath)
	if err != nil {
		return err
	}
	g.log.Info("gathering daily bars",
		"symbols", len(symbols), "start", g.startDate, "end", g.endDate)

	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.gatherSymbol(ctx, sym); err != nil {
			return fmt.Errorf("gathering %s: %w", sym, err)
		}
	}
	return nil
}

func (g *DailyPriceGatherer) gatherSymbol(ctx context.Context, symbol string) error {
	cmd := kis.NewDailyItemChartCommand(symbol, kis.PeriodDay, g.startDate, g.endDate)
	res, err := g.executor.Execute(ctx, cmd)
	if err != nil {
		return err
	}

	bars, err := parseChartResponse(res)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		g.log.Warn("no bars returned", "symbol", symbol)
		return nil
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	if err := store.WriteBars(g.dataDir, symbol, bars); err != nil {
		return err
	}
	if g.archive != nil {
		if err := g.archive.WriteBars(symbol, bars); err != nil {
			return err
		}
	}
	g.log.Info("symbol gathered", "symbol", symbol, "bars", len(bars))
	return nil
}

// parseChartResponse converts the daily item chart payload (its output2
// array) into bars. Field layout per the KIS API: stck_bsop_date,
// stck_oprc/hgpr/lwpr/clpr, acml_vol, acml_tr_pbmn, prdy_ctrt (percent).
func parseChartResponse(res map[string]any) ([]domain.Bar, error) {
	raw, ok := res["output2"].([]any)
	if !ok {
		return nil, fmt.Errorf("response has no output2 array")
	}

	bars := make([]domain.Bar, 0, len(raw))
	for i, item := range raw {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("output2[%d] is not an object", i)
		}
		// Days with no trading come back as empty objects; skip them.
		if s, _ := row["stck_bsop_date"].(string); s == "" {
			continue
		}
		bar, err := parseChartRow(row)
		if err != nil {
			return nil, fmt.Errorf("output2[%d]: %w", i, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseChartRow(row map[string]any) (domain.Bar, error) {
	var bar domain.Bar

	date, err := intField(row, "stck_bsop_date")
	if err != nil {
		return bar, err
	}
	if !domain.ValidDate(int(date)) {
		return bar, fmt.Errorf("stck_bsop_date %d is not a valid date", date)
	}
	bar.Date = int(date)

	if bar.Open, err = intField(row, "stck_oprc"); err != nil {
		return bar, err
	}
	if bar.High, err = intField(row, "stck_hgpr"); err != nil {
		return bar, err
	}
	if bar.Low, err = intField(row, "stck_lwpr"); err != nil {
		return bar, err
	}
	if bar.Close, err = intField(row, "stck_clpr"); err != nil {
		return bar, err
	}

	vol, err := intField(row, "acml_vol")
	if err != nil {
		return bar, err
	}
	bar.Volume = uint64(vol)

	amt, err := intField(row, "acml_tr_pbmn")
	if err != nil {
		return bar, err
	}
	bar.Amount = uint64(amt)

	if s, ok := row["prdy_ctrt"].(string); ok && s != "" {
		pct, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return bar, fmt.Errorf("prdy_ctrt %q: %w", s, err)
		}
		bar.Performance = pct / 100
	}
	return bar, nil
}

// intField reads a KIS numeric field, which arrives as a JSON string.
func intField(row map[string]any, key string) (int64, error) {
	s, ok := row[key].(string)
	if !ok {
		return 0, fmt.Errorf("missing field %s", key)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, s, err)
	}
	return v, nil
}
