// Package rebalancing drives one rebalancing cycle: run each
// profile's strategy, then record the resulting trade delta and
// snapshot in the ledger.
package rebalancing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/ledger"
	"github.com/jchevalier/fundsim/internal/modules/model"
	"github.com/jchevalier/fundsim/internal/modules/strategies"
)

// StrategyRunner is the slice of the strategy service the orchestrator
// needs. Tests substitute a fake.
type StrategyRunner interface {
	LowRisk(targetVolatility float64) (domain.Weights, error)
	LowTurnover(regressor *model.Regressor, targetDate time.Time, windowSize int) (domain.Weights, error)
	HighYield(days int) (domain.Weights, error)
}

// Params are the per-cycle strategy inputs.
type Params struct {
	TargetVolatility float64
	WindowSize       int
	HighYieldDays    int
}

// Service runs rebalancing cycles.
type Service struct {
	strategies StrategyRunner
	snapshots  *ledger.SnapshotRepository
	deals      *ledger.DealRepository
	log        zerolog.Logger
}

// NewService creates a new rebalancing service.
func NewService(strategies StrategyRunner, snapshots *ledger.SnapshotRepository, deals *ledger.DealRepository, log zerolog.Logger) *Service {
	return &Service{
		strategies: strategies,
		snapshots:  snapshots,
		deals:      deals,
		log:        log.With().Str("component", "rebalancing").Logger(),
	}
}

// RunCycle rebalances every profile for the given date. A strategy's
// declared "no result" outcome (insufficient data, weak signal,
// non-convergence) records an explicit no-trade marker and moves on;
// structural failures are collected and returned after every profile
// has had its turn.
//
// The deal is recorded before the snapshot: the delta is defined
// against the most recent snapshot prior to this cycle.
func (s *Service) RunCycle(date time.Time, regressor *model.Regressor, params Params) error {
	runID := uuid.NewString()
	log := s.log.With().
		Str("run_id", runID).
		Str("date", date.Format(domain.DateFormat)).
		Logger()

	log.Info().Msg("Starting rebalancing cycle")

	var errs []error
	for _, profile := range domain.AllProfiles {
		weights, err := s.runStrategy(profile, date, regressor, params)
		if err != nil {
			if strategies.IsNoResult(err) {
				log.Warn().
					Str("profile", string(profile)).
					Err(err).
					Msg("Strategy produced no portfolio, recording no-trade")
				if recordErr := s.deals.Record(date, profile, nil); recordErr != nil {
					errs = append(errs, recordErr)
				}
				continue
			}
			log.Error().
				Str("profile", string(profile)).
				Err(err).
				Msg("Strategy failed")
			errs = append(errs, err)
			continue
		}

		if err := s.deals.Record(date, profile, weights); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.snapshots.Record(profile, date, weights); err != nil {
			errs = append(errs, err)
			continue
		}

		log.Info().
			Str("profile", string(profile)).
			Int("assets", len(weights)).
			Msg("Profile rebalanced")
	}

	return errors.Join(errs...)
}

func (s *Service) runStrategy(profile domain.Profile, date time.Time, regressor *model.Regressor, params Params) (domain.Weights, error) {
	switch profile {
	case domain.ProfileLowRisk:
		return s.strategies.LowRisk(params.TargetVolatility)
	case domain.ProfileLowTurnover:
		if regressor == nil {
			return nil, fmt.Errorf("%w: no fitted model available", strategies.ErrNoInvestment)
		}
		return s.strategies.LowTurnover(regressor, date, params.WindowSize)
	case domain.ProfileHighYield:
		return s.strategies.HighYield(params.HighYieldDays)
	}
	return nil, errors.New("unknown profile " + string(profile))
}
