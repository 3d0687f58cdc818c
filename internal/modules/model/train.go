package model

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/returns"
	"github.com/jchevalier/fundsim/pkg/formulas"
)

// Trainer fits a Regressor from the return store.
type Trainer struct {
	returns *returns.Repository
	log     zerolog.Logger
}

// NewTrainer creates a new model trainer.
func NewTrainer(returns *returns.Repository, log zerolog.Logger) *Trainer {
	return &Trainer{
		returns: returns,
		log:     log.With().Str("component", "model-trainer").Logger(),
	}
}

// Train fits an ordinary least squares regressor over [start, end].
// For every asset, a window of windowSize consecutive returns is one
// example and the return immediately following it is the label.
// Examples containing any non-finite value are discarded before
// fitting; ErrInsufficientData is returned when none survive.
func (t *Trainer) Train(start, end time.Time, windowSize int) (*Regressor, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("window size must be at least 1, got %d", windowSize)
	}

	observations, err := t.returns.AllInRange(start, end)
	if err != nil {
		return nil, err
	}

	features, labels := slidingExamples(observations, windowSize)
	if len(labels) == 0 {
		return nil, ErrInsufficientData
	}

	regressor, err := fitOLS(features, labels, windowSize)
	if err != nil {
		return nil, err
	}

	t.log.Info().
		Int("examples", len(labels)).
		Int("window_size", windowSize).
		Msg("Fitted return prediction model")

	return regressor, nil
}

// slidingExamples builds the supervised examples. Observations must be
// grouped by asset and chronological within each asset, which is what
// the repository's AllInRange guarantees.
func slidingExamples(observations []domain.ReturnObservation, windowSize int) ([][]float64, []float64) {
	var (
		features [][]float64
		labels   []float64
	)

	emit := func(values []float64) {
		for i := 0; i+windowSize < len(values); i++ {
			window := values[i : i+windowSize]
			label := values[i+windowSize]
			if !allFinite(window) || !formulas.IsFinite(label) {
				continue
			}
			example := make([]float64, windowSize)
			copy(example, window)
			features = append(features, example)
			labels = append(labels, label)
		}
	}

	var (
		currentAsset int64
		values       []float64
	)
	for i, obs := range observations {
		if i == 0 || obs.AssetID != currentAsset {
			emit(values)
			currentAsset = obs.AssetID
			values = values[:0]
		}
		values = append(values, obs.Value)
	}
	emit(values)

	return features, labels
}

// fitOLS solves the least squares problem for an intercept plus one
// coefficient per window position.
func fitOLS(features [][]float64, labels []float64, windowSize int) (*Regressor, error) {
	m := len(labels)
	x := mat.NewDense(m, windowSize+1, nil)
	y := mat.NewVecDense(m, labels)

	for i, window := range features {
		x.Set(i, 0, 1)
		for j, v := range window {
			x.Set(i, j+1, v)
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, fmt.Errorf("least squares fit failed: %w", err)
	}

	coefficients := make([]float64, windowSize)
	for j := 0; j < windowSize; j++ {
		coefficients[j] = beta.AtVec(j + 1)
	}

	return &Regressor{
		WindowSize:   windowSize,
		Intercept:    beta.AtVec(0),
		Coefficients: coefficients,
	}, nil
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !formulas.IsFinite(v) {
			return false
		}
	}
	return true
}
