package strategies

import (
	"fmt"
	"math"
	"time"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/model"
	"github.com/jchevalier/fundsim/pkg/formulas"
)

// MaterialityThreshold is the minimum mean absolute predicted return
// required to invest. Below it the prediction is indistinguishable
// from noise and the strategy abstains rather than producing
// near-random weights.
const MaterialityThreshold = 0.0025

// LowTurnover computes the low_turnover portfolio from a fitted
// next-return model. The model is an explicit input: the caller owns
// which artifact (and therefore which training vintage) is used.
//
// For each asset the windowSize most recent returns strictly before
// targetDate form the feature vector, in chronological order. Weights
// are the predictions normalized by the sum of their absolute values,
// sign preserved, so short positions are allowed.
func (s *Service) LowTurnover(regressor *model.Regressor, targetDate time.Time, windowSize int) (domain.Weights, error) {
	if regressor == nil {
		return nil, fmt.Errorf("low_turnover requires a fitted model")
	}
	if windowSize != regressor.WindowSize {
		return nil, fmt.Errorf("window size %d does not match model window %d", windowSize, regressor.WindowSize)
	}

	assets, err := s.assets.GetAll()
	if err != nil {
		return nil, err
	}

	predictions := make(domain.Weights)
	for _, asset := range assets {
		window, err := s.returns.LastNBefore(asset.ID, targetDate, windowSize)
		if err != nil {
			return nil, err
		}
		if len(window) < windowSize {
			continue
		}

		prediction, err := regressor.Predict(window)
		if err != nil {
			return nil, err
		}
		if !formulas.IsFinite(prediction) {
			s.log.Warn().
				Int64("asset_id", asset.ID).
				Msg("Dropping non-finite model prediction")
			continue
		}
		predictions[asset.ID] = prediction
	}

	if len(predictions) == 0 {
		return nil, fmt.Errorf("%w: no asset has %d observations before %s",
			ErrNoInvestment, windowSize, targetDate.Format(domain.DateFormat))
	}

	var totalAbs float64
	for _, p := range predictions {
		totalAbs += math.Abs(p)
	}
	if totalAbs == 0 {
		return nil, fmt.Errorf("%w: all predictions are zero", ErrNoInvestment)
	}

	meanAbs := totalAbs / float64(len(predictions))
	if meanAbs <= MaterialityThreshold {
		s.log.Info().
			Float64("mean_abs_prediction", meanAbs).
			Float64("threshold", MaterialityThreshold).
			Msg("Predicted returns below materiality threshold, abstaining")
		return nil, fmt.Errorf("%w: mean absolute prediction %.6f below threshold", ErrNoInvestment, meanAbs)
	}

	weights := make(domain.Weights, len(predictions))
	for id, p := range predictions {
		weights[id] = p / totalAbs
	}

	s.log.Info().
		Int("assets", len(weights)).
		Float64("mean_abs_prediction", meanAbs).
		Msg("Computed low_turnover portfolio")

	return weights, nil
}
