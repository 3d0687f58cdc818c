package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/domain"
)

// DealRepository handles the derived trade log. Each deals row holds
// one date and up to one weight delta per profile; recording again for
// the same (date, profile) overwrites that single cell.
type DealRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(db *sql.DB, log zerolog.Logger) *DealRepository {
	return &DealRepository{
		db:  db,
		log: log.With().Str("repo", "deals").Logger(),
	}
}

// Record stores the trade delta for (date, profile). newWeights is the
// snapshot about to be recorded for that date; nil means the strategy
// produced no portfolio, stored as an explicit NULL "no trade" marker.
// The delta is newWeights minus the most recent prior snapshot
// (all-zero when the profile has no history), so Record must run
// before the matching snapshot is appended.
//
// Read-diff-upsert happens inside one transaction so two callers
// racing on the same rebalancing date cannot lose an update.
func (r *DealRepository) Record(date time.Time, profile domain.Profile, newWeights domain.Weights) error {
	column, err := profile.DealColumn()
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin deal transaction: %w", err)
	}
	defer tx.Rollback()

	var delta sql.NullString
	if newWeights != nil {
		previous, err := latestSnapshot(tx, profile)
		if err != nil {
			return err
		}
		oldWeights := domain.Weights{}
		if previous != nil {
			oldWeights = previous.Weights
		}

		encoded, err := encodeWeights(newWeights.Sub(oldWeights))
		if err != nil {
			return fmt.Errorf("invalid deal for %s: %w", profile, err)
		}
		delta = sql.NullString{String: encoded, Valid: true}
	}

	// The column name comes from the closed profile lookup table,
	// never from caller input.
	query := fmt.Sprintf(`
		INSERT INTO deals (date, %s) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET %s = excluded.%s`, column, column, column)
	if _, err := tx.Exec(query, date.Format(domain.DateFormat), delta); err != nil {
		return fmt.Errorf("failed to upsert deal for %s: %w", profile, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deal for %s: %w", profile, err)
	}

	event := r.log.Info().
		Str("profile", string(profile)).
		Str("date", date.Format(domain.DateFormat))
	if newWeights == nil {
		event.Msg("Recorded no-trade marker")
	} else {
		event.Msg("Recorded trade delta")
	}

	return nil
}

// Get returns the deal row for a date, or nil when no profile traded
// on that date. Profiles without a delta that day are absent from the
// map; a profile present with a nil mapping never occurs (NULL cells
// are the no-trade marker and are skipped).
func (r *DealRepository) Get(date time.Time) (*Deal, error) {
	var cells [3]sql.NullString
	err := r.db.QueryRow(`
		SELECT low_risk, low_turnover, high_yield_equity_only
		FROM deals WHERE date = ?`, date.Format(domain.DateFormat)).
		Scan(&cells[0], &cells[1], &cells[2])
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query deal: %w", err)
	}

	deal := &Deal{
		Date:   date,
		Deltas: make(map[domain.Profile]domain.Weights),
	}
	for i, profile := range domain.AllProfiles {
		if !cells[i].Valid {
			continue
		}
		weights, err := decodeWeights(cells[i].String)
		if err != nil {
			return nil, fmt.Errorf("malformed deal delta for %s: %w", profile, err)
		}
		deal.Deltas[profile] = weights
	}
	return deal, nil
}
