// Package universe provides read access to the asset reference data.
package universe

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/domain"
)

// AssetRepository handles asset reference data queries.
type AssetRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(db *sql.DB, log zerolog.Logger) *AssetRepository {
	return &AssetRepository{
		db:  db,
		log: log.With().Str("repo", "assets").Logger(),
	}
}

// GetAll returns every asset in the universe.
func (r *AssetRepository) GetAll() ([]domain.Asset, error) {
	rows, err := r.db.Query("SELECT id, ticker, category FROM assets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// GetEquities returns the assets whose category is "equity",
// case-insensitively.
func (r *AssetRepository) GetEquities() ([]domain.Asset, error) {
	rows, err := r.db.Query(
		"SELECT id, ticker, category FROM assets WHERE LOWER(TRIM(category)) = 'equity' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query equity assets: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// GetByID returns a single asset, or nil if it does not exist.
func (r *AssetRepository) GetByID(id int64) (*domain.Asset, error) {
	var a domain.Asset
	err := r.db.QueryRow(
		"SELECT id, ticker, category FROM assets WHERE id = ?", id).
		Scan(&a.ID, &a.Ticker, &a.Category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset %d: %w", id, err)
	}
	return &a, nil
}

// Insert adds an asset and returns its generated ID. Used by the
// bootstrap path and tests; reference data is otherwise immutable.
func (r *AssetRepository) Insert(ticker, category string) (int64, error) {
	res, err := r.db.Exec(
		"INSERT INTO assets (ticker, category) VALUES (?, ?)", ticker, category)
	if err != nil {
		return 0, fmt.Errorf("failed to insert asset %s: %w", ticker, err)
	}
	return res.LastInsertId()
}

func scanAssets(rows *sql.Rows) ([]domain.Asset, error) {
	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Ticker, &a.Category); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}
	return assets, nil
}
