package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchevalier/fundsim/internal/database"
	"github.com/jchevalier/fundsim/internal/domain"
)

func newTestRepos(t *testing.T) (*SnapshotRepository, *DealRepository) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema())

	return NewSnapshotRepository(db.Conn(), zerolog.Nop()),
		NewDealRepository(db.Conn(), zerolog.Nop())
}

func date(s string) time.Time {
	t, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSnapshotRepository_RoundTripIsExact(t *testing.T) {
	snapshots, _ := newTestRepos(t)

	// Awkward floats that lose precision under naive formatting.
	weights := domain.Weights{
		1: 0.1 + 0.2,
		2: 1.0 / 3.0,
		3: math.Nextafter(0.25, 1),
	}
	weights[4] = 1 - weights[1] - weights[2] - weights[3]

	require.NoError(t, snapshots.Record(domain.ProfileLowRisk, date("2024-03-01"), weights))

	latest, err := snapshots.Latest(domain.ProfileLowRisk)
	require.NoError(t, err)
	require.NotNil(t, latest)

	require.Len(t, latest.Weights, len(weights))
	for id, w := range weights {
		assert.Equal(t, w, latest.Weights[id], "asset %d", id)
	}
	assert.True(t, latest.CreatedAt.Equal(date("2024-03-01")))
}

func TestSnapshotRepository_History(t *testing.T) {
	snapshots, _ := newTestRepos(t)

	require.NoError(t, snapshots.Record(domain.ProfileLowRisk, date("2024-03-08"), domain.Weights{1: 1}))
	require.NoError(t, snapshots.Record(domain.ProfileLowRisk, date("2024-03-01"), domain.Weights{2: 1}))
	require.NoError(t, snapshots.Record(domain.ProfileHighYield, date("2024-03-01"), domain.Weights{3: 1}))

	history, err := snapshots.History(domain.ProfileLowRisk)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].CreatedAt.Equal(date("2024-03-01")))
	assert.True(t, history[1].CreatedAt.Equal(date("2024-03-08")))
	assert.Equal(t, domain.Weights{2: 1}, history[0].Weights)
}

func TestSnapshotRepository_Latest_TiebreakOnInsertionOrder(t *testing.T) {
	snapshots, _ := newTestRepos(t)

	require.NoError(t, snapshots.Record(domain.ProfileLowRisk, date("2024-03-01"), domain.Weights{1: 1}))
	require.NoError(t, snapshots.Record(domain.ProfileLowRisk, date("2024-03-01"), domain.Weights{2: 1}))

	latest, err := snapshots.Latest(domain.ProfileLowRisk)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, domain.Weights{2: 1}, latest.Weights)
}

func TestSnapshotRepository_Latest_Empty(t *testing.T) {
	snapshots, _ := newTestRepos(t)

	latest, err := snapshots.Latest(domain.ProfileLowRisk)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDealRepository_FirstDealEqualsPortfolio(t *testing.T) {
	_, deals := newTestRepos(t)

	weights := domain.Weights{1: 0.7, 2: 0.3}
	require.NoError(t, deals.Record(date("2024-03-01"), domain.ProfileLowRisk, weights))

	deal, err := deals.Get(date("2024-03-01"))
	require.NoError(t, err)
	require.NotNil(t, deal)

	delta := deal.Deltas[domain.ProfileLowRisk]
	require.NotNil(t, delta)
	assert.InDelta(t, 0.7, delta[1], 1e-12)
	assert.InDelta(t, 0.3, delta[2], 1e-12)
}

func TestDealRepository_DeltaAgainstLatestSnapshot(t *testing.T) {
	snapshots, deals := newTestRepos(t)

	previous := domain.Weights{1: 0.5, 2: 0.5}
	require.NoError(t, deals.Record(date("2024-03-01"), domain.ProfileLowRisk, previous))
	require.NoError(t, snapshots.Record(domain.ProfileLowRisk, date("2024-03-01"), previous))

	current := domain.Weights{1: 0.2, 3: 0.8}
	require.NoError(t, deals.Record(date("2024-03-08"), domain.ProfileLowRisk, current))
	require.NoError(t, snapshots.Record(domain.ProfileLowRisk, date("2024-03-08"), current))

	deal, err := deals.Get(date("2024-03-08"))
	require.NoError(t, err)
	require.NotNil(t, deal)

	delta := deal.Deltas[domain.ProfileLowRisk]
	assert.InDelta(t, -0.3, delta[1], 1e-12)
	assert.InDelta(t, -0.5, delta[2], 1e-12)
	assert.InDelta(t, 0.8, delta[3], 1e-12)

	// The old portfolio plus the delta reproduces the new one.
	for id, d := range delta {
		assert.InDelta(t, current[id], previous[id]+d, 1e-12)
	}
}

func TestDealRepository_NoTradeMarker(t *testing.T) {
	_, deals := newTestRepos(t)

	require.NoError(t, deals.Record(date("2024-03-01"), domain.ProfileLowTurnover, nil))

	deal, err := deals.Get(date("2024-03-01"))
	require.NoError(t, err)
	require.NotNil(t, deal)

	// The row exists but the profile has no delta: a NULL marker is
	// not the same as an all-zero delta.
	_, present := deal.Deltas[domain.ProfileLowTurnover]
	assert.False(t, present)
}

func TestDealRepository_UpsertSharesOneRowPerDate(t *testing.T) {
	_, deals := newTestRepos(t)

	d := date("2024-03-01")
	require.NoError(t, deals.Record(d, domain.ProfileLowRisk, domain.Weights{1: 1}))
	require.NoError(t, deals.Record(d, domain.ProfileHighYield, domain.Weights{2: 1}))

	// Re-recording low_risk overwrites only its own cell.
	require.NoError(t, deals.Record(d, domain.ProfileLowRisk, domain.Weights{3: 1}))

	deal, err := deals.Get(d)
	require.NoError(t, err)
	require.NotNil(t, deal)
	require.Len(t, deal.Deltas, 2)
	assert.InDelta(t, 1.0, deal.Deltas[domain.ProfileLowRisk][3], 1e-12)
	assert.InDelta(t, 1.0, deal.Deltas[domain.ProfileHighYield][2], 1e-12)
}

func TestDealRepository_Get_MissingDate(t *testing.T) {
	_, deals := newTestRepos(t)

	deal, err := deals.Get(date("2024-03-01"))
	require.NoError(t, err)
	assert.Nil(t, deal)
}

func TestSnapshotRepository_RejectsNonFiniteWeights(t *testing.T) {
	snapshots, deals := newTestRepos(t)

	err := snapshots.Record(domain.ProfileLowRisk, date("2024-03-01"), domain.Weights{1: math.NaN()})
	assert.Error(t, err)

	err = deals.Record(date("2024-03-01"), domain.ProfileLowRisk, domain.Weights{1: math.Inf(1)})
	assert.Error(t, err)
}
