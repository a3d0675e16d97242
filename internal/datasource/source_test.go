package datasource

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/series"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func everything() daterange.Range {
	return daterange.Range{End: date(2100, 1, 1)}
}

func TestLocalCSVFetch(t *testing.T) {
	src := NewLocalCSV("testdata")
	s, err := src.Fetch(context.Background(), "AAPL", everything())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	// duplicate 2022-01-06 collapsed, 2022-01-07 dropped for the missing close
	if s.Len() != 5 {
		t.Fatalf("expected 5 bars, got %d", s.Len())
	}
	if !s.Bars[0].Time.Equal(date(2022, 1, 3)) || s.Bars[0].Close != 182.01 {
		t.Fatalf("bars not sorted ascending: %+v", s.Bars[0])
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("standardized series invalid: %v", err)
	}
}

func TestLocalCSVTrimsToRange(t *testing.T) {
	src := NewLocalCSV("testdata")
	s, err := src.Fetch(context.Background(), "aapl", daterange.Range{Start: date(2022, 1, 4), End: date(2022, 1, 6)})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if s.Len() != 3 || !s.Bars[2].Time.Equal(date(2022, 1, 6)) {
		t.Fatalf("unexpected trimmed series: %+v", s.Bars)
	}

	_, err = src.Fetch(context.Background(), "AAPL", daterange.Range{Start: date(1990, 1, 1), End: date(1990, 2, 1)})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestLocalCSVMissingTicker(t *testing.T) {
	_, err := NewLocalCSV("testdata").Fetch(context.Background(), "NOPE", everything())
	if !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("expected ErrTickerNotFound, got %v", err)
	}
}

const yahooBody = `{"chart":{"result":[{"timestamp":[1641220200,1641306600,1641393000],
"indicators":{"quote":[{"open":[177.83,182.63,null],"high":[182.88,182.94,null],
"low":[177.71,179.12,null],"close":[182.01,179.70,null],"volume":[104701220,99310438,null]}]}}],"error":null}}`

func TestYahooFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v8/finance/chart/NOPE" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
			return
		}
		if r.URL.Path != "/v8/finance/chart/AAPL" || r.URL.Query().Get("range") != "max" || r.URL.Query().Get("interval") != "1d" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	src := NewYahoo(srv.URL, srv.Client())
	s, err := src.Fetch(context.Background(), "AAPL", everything())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected null bar to be dropped, got %d bars", s.Len())
	}
	if !s.Bars[0].Time.Equal(date(2022, 1, 3)) || s.Bars[1].Close != 179.70 {
		t.Fatalf("unexpected bars: %+v", s.Bars)
	}

	if _, err := src.Fetch(context.Background(), "NOPE", everything()); !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("expected ErrTickerNotFound, got %v", err)
	}
}

func TestAlphaVantageFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "TIME_SERIES_DAILY" || q.Get("apikey") != "demo" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		switch q.Get("symbol") {
		case "IBM":
			_, _ = w.Write([]byte(`{"Meta Data":{"2. Symbol":"IBM"},"Time Series (Daily)":{
"2024-01-03":{"1. open":"161.0","2. high":"161.73","3. low":"160.08","4. close":"160.10","5. volume":"4086100"},
"2024-01-02":{"1. open":"162.83","2. high":"163.29","3. low":"160.38","4. close":"161.50","5. volume":"3825045"}}}`))
		case "SLOW":
			_, _ = w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
		default:
			_, _ = w.Write([]byte(`{"Error Message":"Invalid API call."}`))
		}
	}))
	defer srv.Close()

	src := NewAlphaVantage("demo", srv.URL, srv.Client())
	s, err := src.Fetch(context.Background(), "IBM", everything())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if s.Len() != 2 || !s.Bars[0].Time.Equal(date(2024, 1, 2)) || s.Bars[1].Close != 160.10 || s.Bars[0].Volume != 3825045 {
		t.Fatalf("unexpected bars: %+v", s.Bars)
	}
	if _, err := src.Fetch(context.Background(), "NOPE", everything()); !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("expected ErrTickerNotFound, got %v", err)
	}
	if _, err := src.Fetch(context.Background(), "SLOW", everything()); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	for _, kind := range []string{"local", "YFinance"} {
		if _, err := Build(kind, Options{}); err != nil {
			t.Fatalf("Build(%s): %v", kind, err)
		}
	}
	if _, err := Build(KindAlphaVantage, Options{}); err == nil {
		t.Fatalf("expected missing api key error")
	}
	if src, err := Build(KindAlphaVantage, Options{AlphaVantageAPIKey: "k"}); err != nil || src.Name() != "AlphaVantage" {
		t.Fatalf("unexpected alpha vantage build: %v %v", src, err)
	}
	if _, err := Build("bloomberg", Options{}); !errors.Is(err, ErrUnknownSource) || !strings.Contains(err.Error(), KindAlphaVantage) {
		t.Fatalf("expected ErrUnknownSource listing the kinds, got %v", err)
	}
}

func TestStandardizeDropsNonFinite(t *testing.T) {
	bars := []series.Bar{
		{Time: date(2022, 1, 2), Open: 1, High: 1, Low: 1, Close: math.Inf(1), Volume: 1},
		{Time: date(2022, 1, 1), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
	}
	s, err := standardize("X", bars, everything())
	if err != nil {
		t.Fatalf("standardize returned error: %v", err)
	}
	if s.Len() != 1 || !strings.EqualFold(s.Ticker, "x") {
		t.Fatalf("unexpected series: %+v", s)
	}
}
