// Package datasource fetches daily OHLCV bars from local files or HTTP APIs
// and normalises them into validated series.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/series"
)

var (
	// ErrTickerNotFound is returned when a source has no data at all for a ticker.
	ErrTickerNotFound = errors.New("ticker not found")
	// ErrNoData is returned when a ticker exists but no bars fall inside the range.
	ErrNoData = errors.New("no data in range")
	// ErrUnknownSource is returned by Build for unrecognised kinds.
	ErrUnknownSource = errors.New("unknown data source")
	// ErrThrottled is returned when an API reports its rate limit was hit.
	ErrThrottled = errors.New("data source throttled")
)

var nanValue = math.NaN()

// Source kinds accepted by Build.
const (
	KindLocal        = "local"
	KindYahoo        = "yfinance"
	KindAlphaVantage = "alpha_vantage"
)

// Source loads a ticker's full daily history and trims it to r.
type Source interface {
	Name() string
	Fetch(ctx context.Context, ticker string, r daterange.Range) (*series.Series, error)
}

// Options carries the settings every source kind may need.
type Options struct {
	Folder              string
	AlphaVantageAPIKey  string
	YahooBaseURL        string
	AlphaVantageBaseURL string
	Client              *http.Client
}

// Build returns the source registered under kind.
func Build(kind string, opts Options) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindLocal:
		return NewLocalCSV(opts.Folder), nil
	case KindYahoo, "yahoo":
		return NewYahoo(opts.YahooBaseURL, opts.Client), nil
	case KindAlphaVantage, "alphavantage":
		if opts.AlphaVantageAPIKey == "" {
			return nil, fmt.Errorf("%s: api key required", KindAlphaVantage)
		}
		return NewAlphaVantage(opts.AlphaVantageAPIKey, opts.AlphaVantageBaseURL, opts.Client), nil
	default:
		return nil, fmt.Errorf("%w: %q, want one of %v", ErrUnknownSource, kind, Kinds())
	}
}

// Kinds lists the source kinds Build understands.
func Kinds() []string { return []string{KindLocal, KindYahoo, KindAlphaVantage} }

// standardize drops rows with missing values, sorts by time, keeps the last
// bar per timestamp, trims to r and validates the result.
func standardize(ticker string, bars []series.Bar, r daterange.Range) (*series.Series, error) {
	clean := make([]series.Bar, 0, len(bars))
	for _, b := range bars {
		if !finite(b.Open, b.High, b.Low, b.Close, b.Volume) {
			continue
		}
		clean = append(clean, b)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) })

	out := clean[:0]
	for _, b := range clean {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		if !r.Contains(b.Time) {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, ErrNoData)
	}
	s := series.New(ticker, out)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	return s, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// day truncates t to midnight UTC so bars from different sources line up.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
