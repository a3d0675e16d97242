package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"stock-trader-go/internal/chart"
	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/datasource"
	"stock-trader-go/internal/indicator"
)

// Raw plots the price series without an indicator.
const Raw = "RAW"

// PlotNames lists the names Plot accepts.
func PlotNames() []string { return append([]string{Raw}, indicator.Names()...) }

// Plotter exports chart data for many tickers.
type Plotter struct {
	loader    datasource.Loader
	outputDir string
	now       func() time.Time
	log       zerolog.Logger
}

// NewPlotter writes charts into outputDir.
func NewPlotter(loader datasource.Loader, outputDir string, log zerolog.Logger) *Plotter {
	return &Plotter{loader: loader, outputDir: outputDir, now: time.Now, log: log}
}

// Plot computes the named indicator for every loaded ticker and writes one
// chart file each, returning the written paths in ticker order.
func (p *Plotter) Plot(ctx context.Context, tickers []string, name string, r daterange.Range) ([]string, error) {
	var ind indicator.Indicator
	if !strings.EqualFold(strings.TrimSpace(name), Raw) {
		var err error
		if ind, err = indicator.ByName(name); err != nil {
			return nil, err
		}
	}

	data, err := p.loader.Load(ctx, tickers, r)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, ticker := range lo.Uniq(tickers) {
		s, ok := data[ticker]
		if !ok || s.Len() == 0 {
			continue
		}
		var columns []string
		if ind != nil {
			if _, err := ind.Compute(s); err != nil {
				return nil, err
			}
			columns = ind.PlotColumns()
		}
		c, err := chart.Build(s, columns)
		if err != nil {
			return nil, err
		}
		path, err := chart.WriteJSON(p.outputDir, c, p.now())
		if err != nil {
			return nil, err
		}
		p.log.Info().Str("ticker", ticker).Str("path", path).Msg("chart written")
		paths = append(paths, path)
	}
	return paths, nil
}
