package workflow

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/report"
	"stock-trader-go/internal/series"
	"stock-trader-go/internal/strategy"
)

// mapLoader serves pre-built series and ignores the range.
type mapLoader map[string]*series.Series

func (m mapLoader) Load(_ context.Context, tickers []string, _ daterange.Range) (map[string]*series.Series, error) {
	out := map[string]*series.Series{}
	for _, t := range tickers {
		if s, ok := m[t]; ok {
			out[t] = s
		}
	}
	return out, nil
}

func wave(ticker string, n int, phase float64) *series.Series {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]series.Bar, n)
	for i := range bars {
		c := 100 + 25*math.Sin(float64(i)/12+phase)
		bars[i] = series.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 500}
	}
	return series.New(ticker, bars)
}

var frozen = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func TestBacktestWritesReportPerTicker(t *testing.T) {
	dir := t.TempDir()
	loader := mapLoader{"GE": wave("GE", 300, 0), "AAPL": wave("AAPL", 300, 1)}
	bt, err := NewBacktester(loader, BacktestOptions{
		Strategy:     strategy.ModeCrossover,
		OutputDir:    dir,
		RiskFreeRate: 0.03,
		Workers:      2,
		JournalFills: true,
		Now:          func() time.Time { return frozen },
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBacktester returned error: %v", err)
	}

	results, err := bt.Backtest(context.Background(), []string{"GE", "AAPL", "MISSING"}, daterange.Range{}, 10000)
	if err != nil {
		t.Fatalf("Backtest returned error: %v", err)
	}
	if len(results) != 2 || results[0].Ticker != "GE" || results[1].Ticker != "AAPL" {
		t.Fatalf("unexpected results order: %+v", results)
	}
	for _, res := range results {
		if len(res.History) != 300 {
			t.Fatalf("%s: expected 300 history items, got %d", res.Ticker, len(res.History))
		}
		want := filepath.Join(dir, "report_"+res.Ticker+"_2021-01-01_00-00-00.txt")
		if res.ReportPath != want {
			t.Fatalf("expected report at %s, got %s", want, res.ReportPath)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("read report: %v", err)
		}
		for _, label := range []string{"Annualized Return", "Sharpe Ratio", "Maximum Drawdown"} {
			if !strings.Contains(string(data), label) {
				t.Fatalf("%s: report missing %s", res.Ticker, label)
			}
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "fills_ge.jsonl")); err != nil {
		t.Fatalf("expected fill journal: %v", err)
	}
}

func TestBacktestRunsAreIsolated(t *testing.T) {
	shared := wave("X", 120, 0)
	loader := mapLoader{"A": shared, "B": shared}
	bt, err := NewBacktester(loader, BacktestOptions{Strategy: "RSI", Workers: 4}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBacktester returned error: %v", err)
	}
	results, err := bt.Backtest(context.Background(), []string{"A", "B"}, daterange.Range{}, 5000)
	if err != nil {
		t.Fatalf("Backtest returned error: %v", err)
	}
	a, b := results[0].History, results[1].History
	for i := range a {
		if a[i].Value != b[i].Value {
			t.Fatalf("identical inputs diverged at bar %d: %v vs %v", i, a[i].Value, b[i].Value)
		}
	}
	if len(shared.Columns()) != 0 {
		t.Fatalf("backtest mutated the loaded series: %v", shared.Columns())
	}
}

func TestBacktestPersistsRuns(t *testing.T) {
	store, err := report.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	defer store.Close()

	bt, err := NewBacktester(mapLoader{"IBM": wave("IBM", 80, 0)}, BacktestOptions{Strategy: "MACD", Store: store}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBacktester returned error: %v", err)
	}
	results, err := bt.Backtest(context.Background(), []string{"IBM"}, daterange.Range{}, 1000)
	if err != nil {
		t.Fatalf("Backtest returned error: %v", err)
	}
	curve, err := store.EquityCurve(context.Background(), results[0].RunID)
	if err != nil {
		t.Fatalf("EquityCurve returned error: %v", err)
	}
	if len(curve) != 80 {
		t.Fatalf("expected 80 stored points, got %d", len(curve))
	}
}

func TestNewBacktesterRejectsUnknownStrategy(t *testing.T) {
	if _, err := NewBacktester(mapLoader{}, BacktestOptions{Strategy: "Astrology"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected unknown strategy error")
	}
}

func TestPlotWritesChartPerTicker(t *testing.T) {
	dir := t.TempDir()
	p := NewPlotter(mapLoader{"GE": wave("GE", 60, 0)}, dir, zerolog.Nop())
	p.now = func() time.Time { return frozen }

	paths, err := p.Plot(context.Background(), []string{"GE", "NOPE"}, "rsi_14", daterange.Range{})
	if err != nil {
		t.Fatalf("Plot returned error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "GE_RSI_14_2021-01-01_00-00-00.json" {
		t.Fatalf("unexpected chart paths %v", paths)
	}

	raw, err := p.Plot(context.Background(), []string{"GE"}, "raw", daterange.Range{})
	if err != nil || len(raw) != 1 {
		t.Fatalf("raw plot failed: %v %v", raw, err)
	}

	if _, err := p.Plot(context.Background(), []string{"GE"}, "VWAP", daterange.Range{}); err == nil {
		t.Fatalf("expected unknown indicator error")
	}
}
