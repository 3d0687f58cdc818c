// Package ledger implements the append-only portfolio snapshot log and
// the derived trade (deal) log.
package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jchevalier/fundsim/internal/domain"
)

// Snapshot is an immutable record of a profile's target weights as of
// its creation date. A profile's snapshots form an ordered lineage;
// each one supersedes the previous as the live holdings.
type Snapshot struct {
	ID        int64
	Profile   domain.Profile
	CreatedAt time.Time
	Weights   domain.Weights
}

// Deal is the per-date row of the trade log: at most one weight delta
// per profile. A nil entry is the explicit "no trade" marker, distinct
// from an empty (all-zero) delta.
type Deal struct {
	Date   time.Time
	Deltas map[domain.Profile]domain.Weights
}

// encodeWeights serializes a weight mapping for a TEXT column. JSON
// keeps float64 round-trips exact (shortest decimal representation),
// which the snapshot round-trip contract relies on.
func encodeWeights(w domain.Weights) (string, error) {
	if !w.IsFinite() {
		return "", fmt.Errorf("weight mapping contains non-finite values")
	}
	data, err := json.Marshal(map[int64]float64(w))
	if err != nil {
		return "", fmt.Errorf("failed to encode weights: %w", err)
	}
	return string(data), nil
}

func decodeWeights(s string) (domain.Weights, error) {
	var m map[int64]float64
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("failed to decode weights: %w", err)
	}
	return domain.Weights(m), nil
}
