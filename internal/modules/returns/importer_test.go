package returns

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchevalier/fundsim/internal/clients/yahoo"
	"github.com/jchevalier/fundsim/internal/database"
	"github.com/jchevalier/fundsim/internal/modules/universe"
)

type fakeFetcher struct {
	prices map[string][]yahoo.Price
}

func (f *fakeFetcher) GetDailyCloses(symbol string, start, end time.Time) ([]yahoo.Price, error) {
	prices, ok := f.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}
	return prices, nil
}

func dailyPrices(start string, closes []float64) []yahoo.Price {
	first := date(start)
	prices := make([]yahoo.Price, len(closes))
	for i, c := range closes {
		prices[i] = yahoo.Price{Date: first.AddDate(0, 0, i), Close: c}
	}
	return prices
}

func newImporterFixture(t *testing.T, prices map[string][]yahoo.Price) (*Importer, *universe.AssetRepository, *Repository) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema())

	assets := universe.NewAssetRepository(db.Conn(), zerolog.Nop())
	returns := NewRepository(db.Conn(), zerolog.Nop())
	importer := NewImporter(assets, returns, &fakeFetcher{prices: prices}, zerolog.Nop())
	return importer, assets, returns
}

func TestImporter_Run_WeeklyReturns(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 110, 99, 102.3, 103, 109.2}
	importer, assets, returns := newImporterFixture(t, map[string][]yahoo.Price{
		"SPY": dailyPrices("2024-01-01", closes),
	})

	id, err := assets.Insert("SPY", "equity")
	require.NoError(t, err)

	inserted, err := importer.Run(date("2024-01-01"), date("2024-01-10"))
	require.NoError(t, err)

	// The warm-up prefix produces no observations: 10 closes with a
	// 5-day lookback yield 5 returns.
	assert.Equal(t, 5, inserted)

	values, err := returns.LastN(id, 10)
	require.NoError(t, err)
	require.Len(t, values, 5)
	for i, v := range values {
		assert.InDelta(t, closes[i+5]/closes[i]-1, v, 1e-12)
	}
}

func TestImporter_Run_SkipsFailingTicker(t *testing.T) {
	importer, assets, returns := newImporterFixture(t, map[string][]yahoo.Price{
		"SPY": dailyPrices("2024-01-01", []float64{100, 101, 102, 103, 104, 110, 108}),
	})

	spy, err := assets.Insert("SPY", "equity")
	require.NoError(t, err)
	_, err = assets.Insert("UNKNOWN", "equity")
	require.NoError(t, err)

	// The unknown ticker is skipped with a warning, not fatal.
	inserted, err := importer.Run(date("2024-01-01"), date("2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	values, err := returns.LastN(spy, 10)
	require.NoError(t, err)
	assert.Len(t, values, 2)
}

func TestImporter_Run_TooShortHistory(t *testing.T) {
	importer, assets, _ := newImporterFixture(t, map[string][]yahoo.Price{
		"SPY": dailyPrices("2024-01-01", []float64{100, 101, 102}),
	})

	_, err := assets.Insert("SPY", "equity")
	require.NoError(t, err)

	inserted, err := importer.Run(date("2024-01-01"), date("2024-01-03"))
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
