package metrics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/jchevalier/fundsim/internal/domain"
)

// Summary bundles the scalar statistics derived from a reconstructed
// return series.
type Summary struct {
	MeanReturn  float64 `json:"mean_return"`
	TotalReturn float64 `json:"total_return"`
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Days        int     `json:"days"`
}

// Summarize computes every scalar statistic over the series with a
// zero risk-free rate.
func Summarize(series []domain.DailyReturn) Summary {
	return Summary{
		MeanReturn:  MeanReturn(series),
		TotalReturn: TotalReturn(series),
		Volatility:  Volatility(series),
		SharpeRatio: SharpeRatio(series, 0),
		MaxDrawdown: MaxDrawdown(series),
		Days:        len(series),
	}
}

// MeanReturn is the arithmetic mean of the daily returns. An empty
// series yields NaN, matching the convention of the stats library.
func MeanReturn(series []domain.DailyReturn) float64 {
	mean, err := stats.Mean(values(series))
	if err != nil {
		return math.NaN()
	}
	return mean
}

// TotalReturn is the compounded return over the whole series:
// the product of (1 + r) minus 1.
func TotalReturn(series []domain.DailyReturn) float64 {
	total := 1.0
	for _, r := range series {
		total *= 1 + r.Value
	}
	return total - 1
}

// Volatility is the sample standard deviation of the daily returns.
// Fewer than two observations yield NaN.
func Volatility(series []domain.DailyReturn) float64 {
	if len(series) < 2 {
		return math.NaN()
	}
	stdev, err := stats.StandardDeviationSample(values(series))
	if err != nil {
		return math.NaN()
	}
	return stdev
}

// SharpeRatio is (mean - riskFree) / volatility. A zero-volatility
// series yields a non-finite ratio; that is the documented behavior,
// not an error.
func SharpeRatio(series []domain.DailyReturn, riskFree float64) float64 {
	return (MeanReturn(series) - riskFree) / Volatility(series)
}

// MaxDrawdown is the deepest peak-to-trough loss of the compounded
// series: min over time of cumulative/runningMax - 1. It is always
// <= 0, and 0 for an empty series.
func MaxDrawdown(series []domain.DailyReturn) float64 {
	var (
		cumulative = 1.0
		runningMax = 1.0
		drawdown   float64
	)
	for _, r := range series {
		cumulative *= 1 + r.Value
		if cumulative > runningMax {
			runningMax = cumulative
		}
		if dd := cumulative/runningMax - 1; dd < drawdown {
			drawdown = dd
		}
	}
	return drawdown
}

func values(series []domain.DailyReturn) []float64 {
	out := make([]float64, len(series))
	for i, r := range series {
		out[i] = r.Value
	}
	return out
}
