// Package formulas provides small numerical helpers shared by the
// strategy and model code.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily data.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of
// float64 values.
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// CovarianceMatrix builds the sample covariance matrix of the given
// return series. Each element of series is one asset's chronological
// returns; all series must have the same length.
func CovarianceMatrix(series [][]float64) *mat.SymDense {
	n := len(series)
	rows := len(series[0])
	data := mat.NewDense(rows, n, nil)
	for j, s := range series {
		data.SetCol(j, s)
	}
	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, data, nil)
	return cov
}

// PortfolioVolatility computes sqrt(w' Σ w * annualization) for the
// given weights and covariance matrix.
func PortfolioVolatility(weights []float64, cov *mat.SymDense, annualization float64) float64 {
	n := len(weights)
	var variance float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += weights[i] * cov.At(i, j) * weights[j]
		}
	}
	variance *= annualization
	if variance < 0 {
		// Numerical noise around zero.
		variance = 0
	}
	return math.Sqrt(variance)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FilterFinite returns the finite entries of data, preserving order.
func FilterFinite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
