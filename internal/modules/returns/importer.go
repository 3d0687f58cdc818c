package returns

import (
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/clients/yahoo"
	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/universe"
	"github.com/jchevalier/fundsim/pkg/formulas"
)

// ReturnPeriodDays is the lookback of the periodic return: each stored
// value is the percentage change of the close over the previous 5
// trading days (one week).
const ReturnPeriodDays = 5

// PriceFetcher supplies daily closing prices for a ticker. Satisfied by
// the yahoo client; tests substitute a fixture.
type PriceFetcher interface {
	GetDailyCloses(symbol string, start, end time.Time) ([]yahoo.Price, error)
}

// Importer converts provider close prices into weekly return
// observations. Provider gaps (unknown ticker, missing dates) are
// skipped with a warning, never fatal.
type Importer struct {
	assets  *universe.AssetRepository
	returns *Repository
	prices  PriceFetcher
	log     zerolog.Logger
}

// NewImporter creates a new market data importer.
func NewImporter(assets *universe.AssetRepository, returns *Repository, prices PriceFetcher, log zerolog.Logger) *Importer {
	return &Importer{
		assets:  assets,
		returns: returns,
		prices:  prices,
		log:     log.With().Str("component", "importer").Logger(),
	}
}

// Run fetches prices for every asset in the universe over [start, end]
// and stores the derived weekly returns. Returns the number of
// observations written.
func (im *Importer) Run(start, end time.Time) (int, error) {
	assets, err := im.assets.GetAll()
	if err != nil {
		return 0, err
	}

	var batch []domain.ReturnObservation
	for _, asset := range assets {
		observations, err := im.importAsset(asset, start, end)
		if err != nil {
			im.log.Warn().
				Err(err).
				Str("ticker", asset.Ticker).
				Msg("Skipping asset, provider data unavailable")
			continue
		}
		batch = append(batch, observations...)
	}

	inserted, err := im.returns.InsertBatch(batch)
	if err != nil {
		return 0, err
	}

	im.log.Info().
		Int("assets", len(assets)).
		Int("observations", inserted).
		Msg("Imported weekly returns")

	return inserted, nil
}

func (im *Importer) importAsset(asset domain.Asset, start, end time.Time) ([]domain.ReturnObservation, error) {
	prices, err := im.prices.GetDailyCloses(asset.Ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(prices) <= ReturnPeriodDays {
		im.log.Warn().
			Str("ticker", asset.Ticker).
			Int("days", len(prices)).
			Msg("Not enough price history for a weekly return")
		return nil, nil
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}

	// Rocp emits zeros for the warm-up prefix; those are not real
	// observations and are dropped along with any non-finite value.
	rocp := talib.Rocp(closes, ReturnPeriodDays)

	observations := make([]domain.ReturnObservation, 0, len(prices)-ReturnPeriodDays)
	for i := ReturnPeriodDays; i < len(prices); i++ {
		if !formulas.IsFinite(rocp[i]) {
			continue
		}
		observations = append(observations, domain.ReturnObservation{
			AssetID: asset.ID,
			Date:    prices[i].Date,
			Value:   rocp[i],
		})
	}
	return observations, nil
}
