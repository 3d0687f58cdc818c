// Package returns implements the return store: persistence and query
// of (asset, date, periodic return) observations, plus the market-data
// importer that feeds it.
package returns

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/pkg/formulas"
)

// Repository handles return observation storage and retrieval.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new return store repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "returns").Logger(),
	}
}

// InsertBatch persists a batch of observations inside one transaction.
// Non-finite values are dropped at this boundary and never stored; the
// number of rows written is returned.
func (r *Repository) InsertBatch(observations []domain.ReturnObservation) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO returns (asset_id, date, value) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, obs := range observations {
		if !formulas.IsFinite(obs.Value) {
			r.log.Debug().
				Int64("asset_id", obs.AssetID).
				Time("date", obs.Date).
				Msg("Dropping non-finite return observation")
			continue
		}
		if _, err := stmt.Exec(obs.AssetID, obs.Date.Format(domain.DateFormat), obs.Value); err != nil {
			return 0, fmt.Errorf("failed to insert return observation: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit return batch: %w", err)
	}
	return inserted, nil
}

// LastN returns the asset's n most recent observed returns in
// chronological order. Fewer than n values are returned when the asset
// has a shorter history.
func (r *Repository) LastN(assetID int64, n int) ([]float64, error) {
	rows, err := r.db.Query(`
		SELECT value FROM (
			SELECT date, value FROM returns
			WHERE asset_id = ?
			ORDER BY date DESC, rowid DESC
			LIMIT ?
		) ORDER BY date ASC, rowid ASC`, assetID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query last %d returns for asset %d: %w", n, assetID, err)
	}
	defer rows.Close()

	return scanValues(rows)
}

// LastNBefore returns the asset's n most recent returns observed
// strictly before the given date, in chronological order.
func (r *Repository) LastNBefore(assetID int64, before time.Time, n int) ([]float64, error) {
	rows, err := r.db.Query(`
		SELECT value FROM (
			SELECT date, value FROM returns
			WHERE asset_id = ? AND date < ?
			ORDER BY date DESC, rowid DESC
			LIMIT ?
		) ORDER BY date ASC, rowid ASC`, assetID, before.Format(domain.DateFormat), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query returns before %s for asset %d: %w",
			before.Format(domain.DateFormat), assetID, err)
	}
	defer rows.Close()

	return scanValues(rows)
}

// TrailingWindow returns the asset's observations within `days` days of
// its own most recent observation date, chronological. The anchor is
// per-asset, not a global clock, so a stale series still yields its
// latest window. An asset without observations yields an empty slice.
func (r *Repository) TrailingWindow(assetID int64, days int) ([]float64, error) {
	var latest sql.NullString
	err := r.db.QueryRow("SELECT MAX(date) FROM returns WHERE asset_id = ?", assetID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest return date for asset %d: %w", assetID, err)
	}
	if !latest.Valid {
		return nil, nil
	}

	end, err := time.Parse(domain.DateFormat, latest.String)
	if err != nil {
		return nil, fmt.Errorf("malformed return date %q for asset %d: %w", latest.String, assetID, err)
	}
	start := end.AddDate(0, 0, -days)

	rows, err := r.db.Query(`
		SELECT value FROM returns
		WHERE asset_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, rowid ASC`,
		assetID, start.Format(domain.DateFormat), end.Format(domain.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query trailing window for asset %d: %w", assetID, err)
	}
	defer rows.Close()

	return scanValues(rows)
}

// RangeByAssets returns every observation for the given assets between
// from and to inclusive, ordered by date. Duplicate rows are returned
// as-is; the store does not enforce uniqueness.
func (r *Repository) RangeByAssets(assetIDs []int64, from, to time.Time) ([]domain.ReturnObservation, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(assetIDs)), ",")
	args := make([]interface{}, 0, len(assetIDs)+2)
	for _, id := range assetIDs {
		args = append(args, id)
	}
	args = append(args, from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT asset_id, date, value FROM returns
		WHERE asset_id IN (%s) AND date BETWEEN ? AND ?
		ORDER BY date ASC, asset_id ASC, rowid ASC`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query returns range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// AllInRange returns every observation between from and to inclusive,
// grouped by asset and chronological within each asset. Used by the
// model training path.
func (r *Repository) AllInRange(from, to time.Time) ([]domain.ReturnObservation, error) {
	rows, err := r.db.Query(`
		SELECT asset_id, date, value FROM returns
		WHERE date BETWEEN ? AND ?
		ORDER BY asset_id ASC, date ASC, rowid ASC`,
		from.Format(domain.DateFormat), to.Format(domain.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query returns in range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

func scanValues(rows *sql.Rows) ([]float64, error) {
	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan return value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return values: %w", err)
	}
	return values, nil
}

func scanObservations(rows *sql.Rows) ([]domain.ReturnObservation, error) {
	var observations []domain.ReturnObservation
	for rows.Next() {
		var obs domain.ReturnObservation
		var date string
		if err := rows.Scan(&obs.AssetID, &date, &obs.Value); err != nil {
			return nil, fmt.Errorf("failed to scan return observation: %w", err)
		}
		parsed, err := time.Parse(domain.DateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("malformed return date %q: %w", date, err)
		}
		obs.Date = parsed
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return observations: %w", err)
	}
	return observations, nil
}
