// Package chart exports candle data plus indicator traces as JSON for plotting front ends.
package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"stock-trader-go/internal/series"
)

// Panel indexes: 0 holds the candles, 1 the indicators, 2 the volume bars.
const (
	PricePanel     = 0
	IndicatorPanel = 1
	VolumePanel    = 2
)

// Values is a float column that encodes NaN as JSON null.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// Trace is one plotted indicator column.
type Trace struct {
	Column     string    `json:"column"`
	Panel      int       `json:"panel"`
	Kind       string    `json:"kind"`
	Color      string    `json:"color,omitempty"`
	SecondaryY bool      `json:"secondary_y,omitempty"`
	Guides     []float64 `json:"guides,omitempty"`
	Values     Values    `json:"values"`
}

// Candles are the OHLCV arrays aligned with Dates.
type Candles struct {
	Open   Values `json:"open"`
	High   Values `json:"high"`
	Low    Values `json:"low"`
	Close  Values `json:"close"`
	Volume Values `json:"volume"`
}

// Chart is the full export for one ticker.
type Chart struct {
	Ticker    string   `json:"ticker"`
	Title     string   `json:"title"`
	Columns   []string `json:"columns"`
	Dates     []string `json:"dates"`
	Candles   Candles  `json:"candles"`
	Traces    []Trace  `json:"traces"`
	Unplotted []string `json:"unplotted,omitempty"`
}

// renderer pairs a column-name predicate with the trace style it produces.
type renderer struct {
	match func(column string) bool
	style func(column string) Trace
}

// renderers are tried in order; the first match wins.
var renderers = []renderer{
	{
		match: func(c string) bool { return strings.HasPrefix(c, "RSI") },
		style: func(c string) Trace {
			return Trace{Panel: IndicatorPanel, Kind: "line", Guides: []float64{30, 70}}
		},
	},
	{
		match: func(c string) bool { return lo.Contains([]string{"MACDLine", "SignalLine", "MACDHistogram"}, c) },
		style: func(c string) Trace {
			switch c {
			case "MACDHistogram":
				return Trace{Panel: IndicatorPanel, Kind: "bar", Color: "dimgray", SecondaryY: true}
			case "MACDLine":
				return Trace{Panel: IndicatorPanel, Kind: "line", Color: "fuchsia"}
			default:
				return Trace{Panel: IndicatorPanel, Kind: "line", Color: "blue"}
			}
		},
	},
	{
		match: func(c string) bool { return strings.HasPrefix(c, "SMA") },
		style: func(c string) Trace {
			color := "blue"
			if strings.Contains(c, "200") {
				color = "green"
			}
			return Trace{Panel: IndicatorPanel, Kind: "line", Color: color}
		},
	},
	{
		match: func(c string) bool { return strings.HasPrefix(c, "EMA") },
		style: func(c string) Trace {
			color := "cyan"
			if strings.Contains(c, "12") {
				color = "lime"
			}
			return Trace{Panel: IndicatorPanel, Kind: "line", Color: color}
		},
	},
}

// Build assembles candles and one trace per recognised column. Columns no
// renderer claims are listed in Unplotted; a column missing from s is an error.
func Build(s *series.Series, columns []string) (Chart, error) {
	c := Chart{
		Ticker:  s.Ticker,
		Title:   Title(s.Ticker, columns),
		Columns: columns,
		Dates:   lo.Map(s.Bars, func(b series.Bar, _ int) string { return b.Time.Format(time.DateOnly) }),
		Traces:  []Trace{},
	}
	for _, field := range []struct {
		name string
		dst  *Values
	}{
		{series.FieldOpen, &c.Candles.Open},
		{series.FieldHigh, &c.Candles.High},
		{series.FieldLow, &c.Candles.Low},
		{series.FieldClose, &c.Candles.Close},
		{series.FieldVolume, &c.Candles.Volume},
	} {
		values, err := s.Field(field.name)
		if err != nil {
			return Chart{}, err
		}
		*field.dst = values
	}

	for _, column := range columns {
		r, ok := lo.Find(renderers, func(r renderer) bool { return r.match(column) })
		if !ok {
			c.Unplotted = append(c.Unplotted, column)
			continue
		}
		values, ok := s.Column(column)
		if !ok {
			return Chart{}, fmt.Errorf("chart %s: %w: %s (have %v)", s.Ticker, series.ErrUnknownField, column, s.Columns())
		}
		trace := r.style(column)
		trace.Column = column
		trace.Values = values
		c.Traces = append(c.Traces, trace)
	}
	return c, nil
}

// Title names the chart after its first indicator column.
func Title(ticker string, columns []string) string {
	if len(columns) == 0 {
		return ticker + ": stock prices"
	}
	return ticker + ": " + columns[0]
}

// FileName is <ticker>_<columns joined by _>_<timestamp>.json.
func FileName(ticker string, columns []string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.json", ticker, strings.Join(columns, "_"), now.Format("2006-01-02_15-04-05"))
}

// WriteJSON stores c under dir and returns the file path.
func WriteJSON(dir string, c Chart, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode chart %s: %w", c.Ticker, err)
	}
	path := filepath.Join(dir, FileName(c.Ticker, c.Columns, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
