package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/series"
)

// DefaultAlphaVantageBaseURL is the public query endpoint host.
const DefaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantage reads TIME_SERIES_DAILY for a ticker.
type AlphaVantage struct {
	apiKey  string
	BaseURL string
	Client  *http.Client
}

// NewAlphaVantage builds an Alpha Vantage source. Empty arguments select the defaults.
func NewAlphaVantage(apiKey, baseURL string, client *http.Client) *AlphaVantage {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &AlphaVantage{apiKey: apiKey, BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (a *AlphaVantage) Name() string { return "AlphaVantage" }

// avResponse covers the success payload and the error/throttle envelopes.
type avResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
}

// Fetch downloads the daily series. An "Error Message" payload means the
// ticker is unknown; "Note"/"Information" payloads mean the key was throttled.
func (a *AlphaVantage) Fetch(ctx context.Context, ticker string, r daterange.Range) (*series.Series, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", ticker)
	q.Set("outputsize", "full")
	q.Set("apikey", a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage %s: status %d, body: %s", ticker, resp.StatusCode, string(body))
	}

	var payload avResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("alpha vantage decode: %w", err)
	}
	switch {
	case payload.ErrorMessage != "":
		return nil, fmt.Errorf("alpha vantage %s: %s: %w", ticker, payload.ErrorMessage, ErrTickerNotFound)
	case payload.Series == nil && (payload.Note != "" || payload.Information != ""):
		return nil, fmt.Errorf("alpha vantage %s: %s%s: %w", ticker, payload.Note, payload.Information, ErrThrottled)
	case len(payload.Series) == 0:
		return nil, fmt.Errorf("alpha vantage %s: %w", ticker, ErrTickerNotFound)
	}

	bars := make([]series.Bar, 0, len(payload.Series))
	for date, row := range payload.Series {
		at, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("alpha vantage %s: parse date %q: %w", ticker, date, err)
		}
		bars = append(bars, series.Bar{
			Time:   at,
			Open:   avField(row, "open"),
			High:   avField(row, "high"),
			Low:    avField(row, "low"),
			Close:  avField(row, "close"),
			Volume: avField(row, "volume"),
		})
	}
	return standardize(ticker, bars, r)
}

// avField finds keys such as "1. open" by their suffix.
func avField(row map[string]string, name string) float64 {
	for key, value := range row {
		label := key
		if _, after, ok := strings.Cut(key, ". "); ok {
			label = after
		}
		if strings.EqualFold(label, name) {
			return number(value)
		}
	}
	return nanValue
}
