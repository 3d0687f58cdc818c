// Package strategies implements the three portfolio weight generators:
// a volatility-targeting bond-heavy allocation, a model-driven
// low-turnover allocation, and a short-horizon equity yield chaser.
//
// Every strategy is a pure function of the return store, the asset
// universe and its explicit inputs; "no viable portfolio" outcomes are
// typed sentinel errors the caller can branch on.
package strategies

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/modules/returns"
	"github.com/jchevalier/fundsim/internal/modules/universe"
)

var (
	// ErrInfeasible means the strategy found no viable portfolio:
	// no asset satisfied the data requirements.
	ErrInfeasible = errors.New("no viable portfolio")

	// ErrNoInvestment means the low-turnover strategy deliberately
	// abstained (no history, zero or immaterial signal).
	ErrNoInvestment = errors.New("no investment")

	// ErrNotConverged means the numerical solver failed; the caller
	// treats the rebalancing cycle as skipped, never substitutes a
	// default portfolio.
	ErrNotConverged = errors.New("optimization did not converge")
)

// Service exposes the three weight-generation operations.
type Service struct {
	assets  *universe.AssetRepository
	returns *returns.Repository
	log     zerolog.Logger
}

// NewService creates a new strategy service.
func NewService(assets *universe.AssetRepository, returns *returns.Repository, log zerolog.Logger) *Service {
	return &Service{
		assets:  assets,
		returns: returns,
		log:     log.With().Str("component", "strategies").Logger(),
	}
}

// IsNoResult reports whether err is one of the declared "no result"
// outcomes (as opposed to a structural failure such as an unreachable
// store).
func IsNoResult(err error) bool {
	return errors.Is(err, ErrInfeasible) ||
		errors.Is(err, ErrNoInvestment) ||
		errors.Is(err, ErrNotConverged)
}
