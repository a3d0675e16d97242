// Package report formats backtest statistics and persists them.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock-trader-go/internal/performance"
)

// TimestampLayout stamps report file names.
const TimestampLayout = "2006-01-02_15-04-05"

// Report is the rendered text block for one run.
type Report string

// Create renders stats as the plain-text simulation report.
func Create(stats performance.Stats) Report {
	var b strings.Builder
	b.WriteString("=== Trading Simulation Report ===\n\n")
	fmt.Fprintf(&b, "- Annualized Return: %s\n", percent(stats.AnnualizedReturn))
	fmt.Fprintf(&b, "- Sharpe Ratio: %s\n", fixed(stats.SharpeRatio))
	fmt.Fprintf(&b, "- Maximum Drawdown: %s\n", percent(stats.MaxDrawdown))
	b.WriteString("\n================================\n")
	return Report(b.String())
}

// FileName is report_<ticker>_<YYYY-MM-DD_HH-MM-SS>.txt.
func FileName(ticker string, now time.Time) string {
	return fmt.Sprintf("report_%s_%s.txt", ticker, now.Format(TimestampLayout))
}

// Save writes the report under dir and returns the file path.
func Save(dir, ticker string, r Report, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(ticker, now))
	if err := os.WriteFile(path, []byte(r), 0o644); err != nil {
		return "", fmt.Errorf("save report %s: %w", ticker, err)
	}
	return path, nil
}

func percent(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

func fixed(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
