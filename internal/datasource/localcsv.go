package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/series"
)

// LocalCSV reads Stooq-style daily files named <ticker>.us.txt from Dir.
type LocalCSV struct {
	Dir string
}

// NewLocalCSV returns a source rooted at dir.
func NewLocalCSV(dir string) *LocalCSV { return &LocalCSV{Dir: dir} }

func (l *LocalCSV) Name() string { return "LocalCSV" }

// Path returns the file consulted for ticker.
func (l *LocalCSV) Path(ticker string) string {
	return filepath.Join(l.Dir, strings.ToLower(ticker)+".us.txt")
}

// Fetch parses the ticker file. A missing file is ErrTickerNotFound.
func (l *LocalCSV) Fetch(ctx context.Context, ticker string, r daterange.Range) (*series.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.Path(ticker))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", ticker, ErrTickerNotFound)
		}
		return nil, err
	}
	defer f.Close()

	bars, err := parseStooq(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path(ticker), err)
	}
	return standardize(ticker, bars, r)
}

// parseStooq reads Date,Open,High,Low,Close,Volume[,OpenInt] rows. Columns
// are located by header name; unparsable numbers become NaN and are dropped
// later by standardize.
func parseStooq(rd io.Reader) ([]series.Bar, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.Trim(name, "<> "))] = i
	}
	for _, need := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := idx[need]; !ok {
			return nil, fmt.Errorf("missing column %q", need)
		}
	}

	var bars []series.Bar
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		at, err := parseDate(field(rec, idx["date"]))
		if err != nil {
			return nil, err
		}
		bars = append(bars, series.Bar{
			Time:   at,
			Open:   number(field(rec, idx["open"])),
			High:   number(field(rec, idx["high"])),
			Low:    number(field(rec, idx["low"])),
			Close:  number(field(rec, idx["close"])),
			Volume: number(field(rec, idx["volume"])),
		})
	}
	return bars, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nanValue
	}
	return v
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}
