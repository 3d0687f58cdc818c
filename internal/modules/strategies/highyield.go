package strategies

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/pkg/formulas"
)

// DefaultHighYieldDays is the default trailing window for the
// high-yield strategy's mean return estimate.
const DefaultHighYieldDays = 14

// HighYield computes the high_yield_equity_only portfolio: maximize
// the portfolio's mean trailing return over equity-category assets,
// subject to weights summing to 1 and each weight within [-1, 1]
// (shorting allowed).
//
// The trailing window ends at each asset's own most recent observation
// date, not a global clock, so assets with staggered histories are
// still comparable on their freshest data.
func (s *Service) HighYield(days int) (domain.Weights, error) {
	equities, err := s.assets.GetEquities()
	if err != nil {
		return nil, err
	}
	if len(equities) == 0 {
		return nil, fmt.Errorf("%w: no equity-category assets in the universe", ErrInfeasible)
	}

	var (
		included []domain.Asset
		mu       []float64
	)
	for _, asset := range equities {
		values, err := s.returns.TrailingWindow(asset.ID, days)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}
		included = append(included, asset)
		mu = append(mu, formulas.Mean(values))
	}

	if len(included) == 0 {
		return nil, fmt.Errorf("%w: no equity asset has observations in the trailing %d days", ErrInfeasible, days)
	}

	weights, err := maximizeMeanReturn(mu)
	if err != nil {
		return nil, err
	}

	out := make(domain.Weights, len(included))
	for i, asset := range included {
		out[asset.ID] = weights[i]
	}

	s.log.Info().
		Int("assets", len(included)).
		Int("window_days", days).
		Msg("Computed high_yield_equity_only portfolio")

	return out, nil
}

// maximizeMeanReturn solves max mu'w s.t. sum(w) = 1, w in [-1, 1] as
// a standard-form linear program. Substituting y = w + 1 (so y >= 0)
// and adding one slack per upper bound gives:
//
//	min -mu'y  s.t.  sum(y) = n + 1,  y_i + s_i = 2,  y, s >= 0
func maximizeMeanReturn(mu []float64) ([]float64, error) {
	n := len(mu)

	c := make([]float64, 2*n)
	for i, m := range mu {
		c[i] = -m
	}

	a := mat.NewDense(n+1, 2*n, nil)
	b := make([]float64, n+1)
	for i := 0; i < n; i++ {
		a.Set(0, i, 1)
	}
	b[0] = float64(n + 1)
	for i := 0; i < n; i++ {
		a.Set(i+1, i, 1)
		a.Set(i+1, n+i, 1)
		b[i+1] = 2
	}

	_, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}

	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		weights[i] = x[i] - 1
	}
	return weights, nil
}
