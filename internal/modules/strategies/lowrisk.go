package strategies

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/pkg/formulas"
)

const (
	// LowRiskLookback is the number of trailing observations each
	// candidate asset must have; assets with fewer are excluded.
	LowRiskLookback = 252

	// MinBondWeight is the minimum total weight on bond-category
	// assets.
	MinBondWeight = 0.6

	// lowRiskPenalty scales the quadratic constraint penalties added
	// to the volatility-tracking objective.
	lowRiskPenalty = 1e4

	// constraintTolerance is the accepted residual on the bond
	// constraint after projecting the solver's result back onto the
	// simplex.
	constraintTolerance = 1e-4
)

// LowRisk computes the low_risk portfolio: minimize the squared gap
// between annualized portfolio volatility and targetVolatility,
// subject to weights summing to 1, bond-category weight of at least
// 0.6, and no short selling.
//
// The constrained program is solved as a penalty-augmented
// unconstrained minimization (Nelder-Mead), then projected back onto
// the feasible box and renormalized. The local optimum is accepted
// as-is; there is no multi-start. A residual bond-constraint violation
// beyond tolerance is reported as non-convergence, never silently
// replaced with a default portfolio.
func (s *Service) LowRisk(targetVolatility float64) (domain.Weights, error) {
	assets, err := s.assets.GetAll()
	if err != nil {
		return nil, err
	}

	var (
		included []domain.Asset
		series   [][]float64
	)
	for _, asset := range assets {
		values, err := s.returns.LastN(asset.ID, LowRiskLookback)
		if err != nil {
			return nil, err
		}
		if len(values) < LowRiskLookback {
			continue
		}
		included = append(included, asset)
		series = append(series, values)
	}

	if len(included) == 0 {
		return nil, fmt.Errorf("%w: no asset has %d return observations", ErrInfeasible, LowRiskLookback)
	}

	n := len(included)
	cov := formulas.CovarianceMatrix(series)

	bond := make([]float64, n)
	for i, asset := range included {
		if asset.IsBond() {
			bond[i] = 1
		}
	}

	objective := func(w []float64) float64 {
		vol := formulas.PortfolioVolatility(w, cov, formulas.TradingDaysPerYear)
		gap := vol - targetVolatility
		value := gap * gap

		var sum, bondSum, penalty float64
		for i, v := range w {
			sum += v
			bondSum += bond[i] * v
			if v < 0 {
				penalty += v * v
			} else if v > 1 {
				penalty += (v - 1) * (v - 1)
			}
		}
		penalty += (sum - 1) * (sum - 1)
		if bondSum < MinBondWeight {
			penalty += (MinBondWeight - bondSum) * (MinBondWeight - bondSum)
		}

		return value + lowRiskPenalty*penalty
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1 / float64(n)
	}

	result, err := optimize.Minimize(
		optimize.Problem{Func: objective},
		initial,
		nil,
		&optimize.NelderMead{},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}
	if result.Status != optimize.FunctionConvergence && result.Status != optimize.GradientThreshold &&
		result.Status != optimize.StepConvergence && result.Status != optimize.Success {
		return nil, fmt.Errorf("%w: solver stopped with status %v", ErrNotConverged, result.Status)
	}

	weights, err := projectLowRisk(result.X, bond)
	if err != nil {
		return nil, err
	}

	out := make(domain.Weights, n)
	for i, asset := range included {
		out[asset.ID] = weights[i]
	}

	s.log.Info().
		Int("assets", n).
		Float64("target_volatility", targetVolatility).
		Float64("achieved_volatility", formulas.PortfolioVolatility(weights, cov, formulas.TradingDaysPerYear)).
		Msg("Computed low_risk portfolio")

	return out, nil
}

// projectLowRisk clamps the raw solver output to [0,1], renormalizes
// it onto the simplex and verifies the bond constraint survived.
func projectLowRisk(raw, bond []float64) ([]float64, error) {
	w := make([]float64, len(raw))
	var sum float64
	for i, v := range raw {
		v = math.Max(0, math.Min(1, v))
		w[i] = v
		sum += v
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: degenerate solution with non-positive weight sum", ErrNotConverged)
	}

	var bondSum float64
	for i := range w {
		w[i] /= sum
		bondSum += bond[i] * w[i]
	}

	if bondSum < MinBondWeight-constraintTolerance {
		return nil, fmt.Errorf("%w: bond weight %.6f below minimum %.2f", ErrNotConverged, bondSum, MinBondWeight)
	}
	return w, nil
}
