package domain

import "math"

// Weights maps asset IDs to portfolio weights. A full portfolio sums to
// 1; a trade delta (difference of two portfolios) sums to ~0.
type Weights map[int64]float64

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// AssetIDs returns the asset identifiers present in the mapping, in
// unspecified order.
func (w Weights) AssetIDs() []int64 {
	ids := make([]int64, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	return ids
}

// Normalized returns a copy rescaled so the weights sum to 1. The
// caller must ensure Sum() > 0.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	out := make(Weights, len(w))
	for id, v := range w {
		out[id] = v / sum
	}
	return out
}

// Sub returns w - other elementwise, treating assets present on only
// one side as zero on the other.
func (w Weights) Sub(other Weights) Weights {
	out := make(Weights, len(w)+len(other))
	for id, v := range w {
		out[id] = v - other[id]
	}
	for id, v := range other {
		if _, seen := w[id]; !seen {
			out[id] = -v
		}
	}
	return out
}

// IsFinite reports whether every weight is a finite number.
func (w Weights) IsFinite() bool {
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
