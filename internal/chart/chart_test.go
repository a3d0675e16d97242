package chart

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stock-trader-go/internal/indicator"
	"stock-trader-go/internal/series"
)

func sample(n int) *series.Series {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]series.Bar, n)
	for i := range bars {
		c := 100 + float64(i%7) - float64(i%3)
		bars[i] = series.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return series.New("AAPL", bars)
}

func TestValuesEncodeNaNAsNull(t *testing.T) {
	data, err := json.Marshal(Values{1.5, math.NaN(), 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[1.5,null,3]" {
		t.Fatalf("unexpected encoding %s", data)
	}
}

func TestBuildDispatchesByColumnName(t *testing.T) {
	s := sample(60)
	macd := indicator.NewMACD()
	if _, err := macd.Compute(s); err != nil {
		t.Fatalf("MACD compute: %v", err)
	}
	rsi := indicator.NewRSI(14, series.FieldClose)
	if _, err := rsi.Compute(s); err != nil {
		t.Fatalf("RSI compute: %v", err)
	}
	columns := append(macd.PlotColumns(), rsi.PlotColumns()...)
	if err := s.AddColumn("Mystery", make([]float64, s.Len())); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	columns = append(columns, "Mystery")

	c, err := Build(s, columns)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	styles := map[string]Trace{}
	for _, tr := range c.Traces {
		if len(tr.Values) != s.Len() {
			t.Fatalf("%s: trace length %d != %d", tr.Column, len(tr.Values), s.Len())
		}
		styles[tr.Column] = tr
	}
	if styles["MACDHistogram"].Kind != "bar" || !styles["MACDHistogram"].SecondaryY {
		t.Fatalf("histogram should be a secondary-axis bar trace: %+v", styles["MACDHistogram"])
	}
	if styles["MACDLine"].Color != "fuchsia" || styles["EMA_12"].Color != "lime" || styles["EMA_26"].Color != "cyan" {
		t.Fatalf("unexpected MACD panel colors")
	}
	if g := styles["RSI_14"].Guides; len(g) != 2 || g[0] != 30 || g[1] != 70 {
		t.Fatalf("RSI trace should carry 30/70 guides, got %v", g)
	}
	if len(c.Unplotted) != 1 || c.Unplotted[0] != "Mystery" {
		t.Fatalf("expected Mystery to be unplotted, got %v", c.Unplotted)
	}
	if c.Title != "AAPL: MACDLine" {
		t.Fatalf("unexpected title %q", c.Title)
	}
}

func TestBuildRawPlot(t *testing.T) {
	c, err := Build(sample(5), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(c.Traces) != 0 || c.Title != "AAPL: stock prices" || len(c.Candles.Close) != 5 {
		t.Fatalf("unexpected raw chart: %+v", c)
	}
}

func TestBuildMissingColumn(t *testing.T) {
	s := sample(5)
	if err := s.AddColumn("EMA_5", []float64{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("AddColumn returned error: %v", err)
	}
	_, err := Build(s, []string{"SMA_200"})
	if err == nil {
		t.Fatalf("expected error for column not computed on the series")
	}
	if !strings.Contains(err.Error(), "have [EMA_5]") {
		t.Fatalf("error should list the computed columns, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	s := sample(30)
	sma := indicator.NewSMA(20, series.FieldClose)
	if _, err := sma.Compute(s); err != nil {
		t.Fatalf("SMA compute: %v", err)
	}
	c, err := Build(s, sma.PlotColumns())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	path, err := WriteJSON(t.TempDir(), c, now)
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}
	if filepath.Base(path) != "AAPL_SMA_20_2024-01-02_03-04-05.json" {
		t.Fatalf("unexpected file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !strings.Contains(string(data), "null") {
		t.Fatalf("expected SMA warm-up to be exported as null")
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("exported chart is not valid JSON: %v", err)
	}
}
