package universe

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchevalier/fundsim/internal/database"
)

func newTestRepo(t *testing.T) *AssetRepository {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema())

	return NewAssetRepository(db.Conn(), zerolog.Nop())
}

func TestAssetRepository_InsertAndGetAll(t *testing.T) {
	repo := newTestRepo(t)

	id1, err := repo.Insert("AGG", "bond")
	require.NoError(t, err)
	id2, err := repo.Insert("SPY", "equity")
	require.NoError(t, err)

	assets, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, id1, assets[0].ID)
	assert.Equal(t, "AGG", assets[0].Ticker)
	assert.Equal(t, id2, assets[1].ID)
	assert.Equal(t, "equity", assets[1].Category)
}

func TestAssetRepository_GetEquities(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Insert("AGG", "bond")
	require.NoError(t, err)
	spy, err := repo.Insert("SPY", "equity")
	require.NoError(t, err)
	veur, err := repo.Insert("VEUR", "Equity")
	require.NoError(t, err)

	equities, err := repo.GetEquities()
	require.NoError(t, err)
	require.Len(t, equities, 2)
	assert.Equal(t, spy, equities[0].ID)
	assert.Equal(t, veur, equities[1].ID)
}

func TestAssetRepository_GetByID(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.Insert("SPY", "equity")
	require.NoError(t, err)

	asset, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, "SPY", asset.Ticker)

	missing, err := repo.GetByID(id + 1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
