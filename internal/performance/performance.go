// Package performance derives summary statistics from an equity curve.
package performance

import (
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear scales bar counts to years for annualisation.
const TradingDaysPerYear = 252

// DefaultRiskFreeRate is subtracted from every valuation before computing Sharpe.
const DefaultRiskFreeRate = 0.03

// HistoryItem is the total portfolio value at the close of one bar.
type HistoryItem struct {
	Time  time.Time
	Value float64
}

// History is an equity curve in bar order.
type History []HistoryItem

// Stats are the three figures every report carries.
type Stats struct {
	AnnualizedReturn float64
	SharpeRatio      float64
	MaxDrawdown      float64
}

// Values projects the curve onto its valuations.
func Values(h History) []float64 {
	return lo.Map(h, func(item HistoryItem, _ int) float64 { return item.Value })
}

// AnnualizedReturn compounds the first-to-last growth over len(h)/252 years.
// Fewer than two points or a zero starting value yield 0.
func AnnualizedReturn(h History) float64 {
	if len(h) < 2 {
		return 0
	}
	start, end := h[0].Value, h[len(h)-1].Value
	if start == 0 {
		return 0
	}
	years := float64(len(h)) / TradingDaysPerYear
	return math.Pow(end/start, 1/years) - 1
}

// SharpeRatio is mean(v-rf)/stdev(v-rf) over the raw valuation levels, using
// the population standard deviation. Not a returns-based Sharpe: the figure is
// kept comparable with reports produced by earlier versions of the tool.
// An empty curve or a flat one yields 0.
func SharpeRatio(h History, riskFreeRate float64) float64 {
	if len(h) == 0 {
		return 0
	}
	excess := lo.Map(Values(h), func(v float64, _ int) float64 { return v - riskFreeRate })
	mean, std := stat.PopMeanStdDev(excess, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std
}

// MaxDrawdown is the most negative fall from a running peak, as a fraction of
// that peak. Fewer than two points yield 0.
func MaxDrawdown(h History) float64 {
	if len(h) < 2 {
		return 0
	}
	peak := h[0].Value
	worst := 0.0
	for _, item := range h {
		if item.Value > peak {
			peak = item.Value
		}
		if peak == 0 {
			continue
		}
		if dd := (item.Value - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

// Summarize computes all report statistics for h.
func Summarize(h History, riskFreeRate float64) Stats {
	return Stats{
		AnnualizedReturn: AnnualizedReturn(h),
		SharpeRatio:      SharpeRatio(h, riskFreeRate),
		MaxDrawdown:      MaxDrawdown(h),
	}
}
