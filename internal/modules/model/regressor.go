// Package model implements the next-return linear regressor consumed
// by the low-turnover strategy: offline training over sliding windows
// of historical returns, a persisted artifact, and inference.
package model

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned by Train when no valid training
// example survives filtering.
var ErrInsufficientData = errors.New("insufficient data to fit model")

// Regressor is a fitted linear model predicting the next periodic
// return from the previous WindowSize returns in chronological order.
type Regressor struct {
	WindowSize   int       `msgpack:"window_size"`
	Intercept    float64   `msgpack:"intercept"`
	Coefficients []float64 `msgpack:"coefficients"`
}

// Predict returns the model's next-return prediction for one feature
// window (chronological, oldest first).
func (r *Regressor) Predict(window []float64) (float64, error) {
	if len(window) != r.WindowSize {
		return 0, fmt.Errorf("expected %d features, got %d", r.WindowSize, len(window))
	}
	prediction := r.Intercept
	for i, v := range window {
		prediction += r.Coefficients[i] * v
	}
	return prediction, nil
}
