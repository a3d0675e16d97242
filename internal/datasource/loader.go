package datasource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/metrics"
	"stock-trader-go/internal/series"
)

// Concurrency modes accepted by NewLoader.
const (
	ModeSingle  = "single"
	ModeThreads = "threads"
)

// DefaultWorkers bounds ParallelLoader when no worker count is configured.
const DefaultWorkers = 4

// Loader fetches many tickers from one source. Tickers without data are
// logged and left out of the result; any other failure aborts the load.
type Loader interface {
	Load(ctx context.Context, tickers []string, r daterange.Range) (map[string]*series.Series, error)
}

// NewLoader picks a loader for the configured concurrency mode.
func NewLoader(mode string, workers int, src Source, log zerolog.Logger) (Loader, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeSingle:
		return NewSingleLoader(src, log), nil
	case ModeThreads:
		return NewParallelLoader(src, workers, log), nil
	default:
		return nil, fmt.Errorf("unsupported concurrency mode %q", mode)
	}
}

// SingleLoader fetches tickers one after another.
type SingleLoader struct {
	src Source
	log zerolog.Logger
}

// NewSingleLoader wraps src.
func NewSingleLoader(src Source, log zerolog.Logger) *SingleLoader {
	return &SingleLoader{src: src, log: log}
}

// Load fetches each distinct ticker in order.
func (l *SingleLoader) Load(ctx context.Context, tickers []string, r daterange.Range) (map[string]*series.Series, error) {
	out := make(map[string]*series.Series, len(tickers))
	for _, ticker := range lo.Uniq(tickers) {
		s, err := fetch(ctx, l.src, ticker, r, l.log)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out[ticker] = s
		}
	}
	return out, nil
}

// ParallelLoader fetches tickers on a bounded pool of goroutines.
type ParallelLoader struct {
	src     Source
	workers int
	log     zerolog.Logger
}

// NewParallelLoader wraps src with at most workers concurrent fetches.
func NewParallelLoader(src Source, workers int, log zerolog.Logger) *ParallelLoader {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &ParallelLoader{src: src, workers: workers, log: log}
}

// Load fans fetches out over the pool. The first hard error cancels the
// remaining fetches and is returned.
func (l *ParallelLoader) Load(parent context.Context, tickers []string, r daterange.Range) (map[string]*series.Series, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan string)
	var (
		mu       sync.Mutex
		out      = make(map[string]*series.Series, len(tickers))
		firstErr error
		wg       sync.WaitGroup
	)
	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				s, err := fetch(ctx, l.src, ticker, r, l.log)
				mu.Lock()
				switch {
				case err != nil && firstErr == nil:
					firstErr = err
					cancel()
				case s != nil:
					out[ticker] = s
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, ticker := range lo.Uniq(tickers) {
		select {
		case jobs <- ticker:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetch loads one ticker, mapping "no data" outcomes to a nil series.
func fetch(ctx context.Context, src Source, ticker string, r daterange.Range, log zerolog.Logger) (*series.Series, error) {
	s, err := src.Fetch(ctx, ticker, r)
	switch {
	case err == nil:
		metrics.FetchesTotal.WithLabelValues(src.Name(), "ok").Inc()
		log.Debug().Str("ticker", ticker).Str("source", src.Name()).Int("bars", s.Len()).Msg("loaded")
		return s, nil
	case errors.Is(err, ErrTickerNotFound):
		metrics.FetchesTotal.WithLabelValues(src.Name(), "not_found").Inc()
		log.Warn().Str("ticker", ticker).Str("source", src.Name()).Msg("ticker not found - skipping")
		return nil, nil
	case errors.Is(err, ErrNoData):
		metrics.FetchesTotal.WithLabelValues(src.Name(), "empty").Inc()
		log.Warn().Str("ticker", ticker).Str("range", r.String()).Msg("no data for the date range - skipping")
		return nil, nil
	default:
		metrics.FetchesTotal.WithLabelValues(src.Name(), "error").Inc()
		return nil, fmt.Errorf("load %s from %s: %w", ticker, src.Name(), err)
	}
}

// ReadTickerFile returns one ticker per non-blank line, trimmed.
func ReadTickerFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tickers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if t := strings.TrimSpace(scanner.Text()); t != "" {
			tickers = append(tickers, t)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tickers %s: %w", path, err)
	}
	return tickers, nil
}
