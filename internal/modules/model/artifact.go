package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Save persists the fitted model to path. The artifact is opaque to
// everything but Load; msgpack keeps float64 values bit-exact so the
// train/persist/load/predict round trip is lossless.
func Save(r *Regressor, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	data, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	return nil
}

// Load reads a model artifact written by Save.
func Load(path string) (*Regressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var r Regressor
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	if r.WindowSize < 1 || len(r.Coefficients) != r.WindowSize {
		return nil, fmt.Errorf("corrupt model artifact: window size %d with %d coefficients",
			r.WindowSize, len(r.Coefficients))
	}
	return &r, nil
}
