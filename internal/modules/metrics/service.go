// Package metrics reconstructs realized daily portfolio returns from
// the snapshot ledger and the return store, and derives the scalar
// risk/performance statistics served to the presentation layer.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/ledger"
	"github.com/jchevalier/fundsim/internal/modules/returns"
	"github.com/jchevalier/fundsim/pkg/formulas"
)

// CoverageDays is the length of a snapshot's holding period: the
// snapshot's weights are the live holdings from its creation date
// through creation date + 6 days (one week inclusive).
const CoverageDays = 6

// weightSumTolerance is how far a stored snapshot's weight sum may
// drift from 1 before it is renormalized.
const weightSumTolerance = 1e-5

// Service reconstructs portfolio return series.
type Service struct {
	snapshots *ledger.SnapshotRepository
	returns   *returns.Repository
	log       zerolog.Logger
}

// NewService creates a new metrics service.
func NewService(snapshots *ledger.SnapshotRepository, returns *returns.Repository, log zerolog.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		returns:   returns,
		log:       log.With().Str("component", "metrics").Logger(),
	}
}

// ReconstructReturns replays the profile's snapshot history against
// the return store and produces its realized daily return series.
//
// Each snapshot contributes the dates inside its own one-week coverage
// window independently; successive snapshots are not deduplicated, so
// a cadence that overlaps coverage windows double-counts by design
// (the caller controls cadence). The result is a pure function of
// ledger and return store state: no caching, identical output for
// identical inputs.
//
// Weight-sum policy (business rule, kept explicit): a sum off by more
// than 1e-5 is proportionally renormalized with a warning; a
// non-positive sum makes the snapshot unusable and it is skipped with
// an error log.
func (s *Service) ReconstructReturns(profile domain.Profile) ([]domain.DailyReturn, error) {
	snapshots, err := s.snapshots.History(profile)
	if err != nil {
		return nil, err
	}

	var series []domain.DailyReturn
	for _, snapshot := range snapshots {
		daily, err := s.replaySnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		series = append(series, daily...)
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	s.log.Debug().
		Str("profile", string(profile)).
		Int("snapshots", len(snapshots)).
		Int("days", len(series)).
		Msg("Reconstructed return series")

	return series, nil
}

func (s *Service) replaySnapshot(snapshot ledger.Snapshot) ([]domain.DailyReturn, error) {
	weights := snapshot.Weights
	if len(weights) == 0 {
		return nil, nil
	}

	sum := weights.Sum()
	if math.Abs(sum-1) > weightSumTolerance {
		if sum <= 0 {
			s.log.Error().
				Str("profile", string(snapshot.Profile)).
				Str("date", snapshot.CreatedAt.Format(domain.DateFormat)).
				Float64("weight_sum", sum).
				Msg("Snapshot weight sum is non-positive, skipping")
			return nil, nil
		}
		s.log.Warn().
			Str("profile", string(snapshot.Profile)).
			Str("date", snapshot.CreatedAt.Format(domain.DateFormat)).
			Float64("weight_sum", sum).
			Msg("Snapshot weights do not sum to 1, renormalizing")
		weights = weights.Normalized()
	}

	windowEnd := snapshot.CreatedAt.AddDate(0, 0, CoverageDays)
	observations, err := s.returns.RangeByAssets(weights.AssetIDs(), snapshot.CreatedAt, windowEnd)
	if err != nil {
		return nil, err
	}

	// Weighted sum per date over the assets observed that date;
	// assets without a same-date observation are excluded from the
	// day, not imputed as zero. Dates with no contribution at all
	// are dropped rather than zero-filled.
	type accumulator struct {
		value float64
		seen  bool
	}
	byDate := make(map[string]*accumulator)
	var order []string
	for _, obs := range observations {
		if !formulas.IsFinite(obs.Value) {
			continue
		}
		weight, ok := weights[obs.AssetID]
		if !ok {
			continue
		}
		key := obs.Date.Format(domain.DateFormat)
		acc := byDate[key]
		if acc == nil {
			acc = &accumulator{}
			byDate[key] = acc
			order = append(order, key)
		}
		acc.value += obs.Value * weight
		acc.seen = true
	}

	sort.Strings(order)
	daily := make([]domain.DailyReturn, 0, len(order))
	for _, key := range order {
		acc := byDate[key]
		if !acc.seen || !formulas.IsFinite(acc.value) {
			continue
		}
		date, err := time.Parse(domain.DateFormat, key)
		if err != nil {
			return nil, err
		}
		daily = append(daily, domain.DailyReturn{Date: date, Value: acc.value})
	}

	s.log.Info().
		Str("profile", string(snapshot.Profile)).
		Str("date", snapshot.CreatedAt.Format(domain.DateFormat)).
		Int("assets", len(weights)).
		Int("days", len(daily)).
		Msg("Replayed snapshot coverage window")

	return daily, nil
}
