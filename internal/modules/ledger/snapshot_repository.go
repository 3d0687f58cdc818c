package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/domain"
)

// SnapshotRepository handles the append-only portfolio snapshot log.
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Record appends a new snapshot. Snapshots are never updated; a
// recomputed rebalancing produces a new row.
func (r *SnapshotRepository) Record(profile domain.Profile, createdAt time.Time, weights domain.Weights) error {
	holdings, err := encodeWeights(weights)
	if err != nil {
		return fmt.Errorf("invalid snapshot for %s: %w", profile, err)
	}

	_, err = r.db.Exec(
		"INSERT INTO portfolios (profile, created_at, holdings) VALUES (?, ?, ?)",
		string(profile), createdAt.Format(domain.DateFormat), holdings)
	if err != nil {
		return fmt.Errorf("failed to record snapshot for %s: %w", profile, err)
	}

	r.log.Info().
		Str("profile", string(profile)).
		Str("date", createdAt.Format(domain.DateFormat)).
		Int("assets", len(weights)).
		Msg("Recorded portfolio snapshot")

	return nil
}

// History returns the profile's snapshots in ascending creation-date
// order (insertion order breaking ties), skipping rows without
// holdings.
func (r *SnapshotRepository) History(profile domain.Profile) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT id, created_at, holdings FROM portfolios
		WHERE profile = ? AND holdings IS NOT NULL
		ORDER BY created_at ASC, id ASC`, string(profile))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history for %s: %w", profile, err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snap, err := r.scanSnapshot(rows, profile)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// Latest returns the profile's most recent snapshot, or nil when the
// profile has none.
func (r *SnapshotRepository) Latest(profile domain.Profile) (*Snapshot, error) {
	return latestSnapshot(r.db, profile)
}

// querier is satisfied by both *sql.DB and *sql.Tx so the deal upsert
// can read the prior snapshot inside its own transaction.
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func latestSnapshot(q querier, profile domain.Profile) (*Snapshot, error) {
	var (
		id       int64
		created  string
		holdings string
	)
	err := q.QueryRow(`
		SELECT id, created_at, holdings FROM portfolios
		WHERE profile = ? AND holdings IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, string(profile)).Scan(&id, &created, &holdings)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot for %s: %w", profile, err)
	}

	createdAt, err := time.Parse(domain.DateFormat, created)
	if err != nil {
		return nil, fmt.Errorf("malformed snapshot date %q: %w", created, err)
	}
	weights, err := decodeWeights(holdings)
	if err != nil {
		return nil, fmt.Errorf("malformed snapshot holdings for %s: %w", profile, err)
	}

	return &Snapshot{ID: id, Profile: profile, CreatedAt: createdAt, Weights: weights}, nil
}

func (r *SnapshotRepository) scanSnapshot(rows *sql.Rows, profile domain.Profile) (Snapshot, error) {
	var (
		id       int64
		created  string
		holdings string
	)
	if err := rows.Scan(&id, &created, &holdings); err != nil {
		return Snapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	createdAt, err := time.Parse(domain.DateFormat, created)
	if err != nil {
		return Snapshot{}, fmt.Errorf("malformed snapshot date %q: %w", created, err)
	}
	weights, err := decodeWeights(holdings)
	if err != nil {
		return Snapshot{}, fmt.Errorf("malformed snapshot holdings: %w", err)
	}

	return Snapshot{ID: id, Profile: profile, CreatedAt: createdAt, Weights: weights}, nil
}
