package rebalancing

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchevalier/fundsim/internal/database"
	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/ledger"
	"github.com/jchevalier/fundsim/internal/modules/model"
	"github.com/jchevalier/fundsim/internal/modules/strategies"
)

type fakeStrategies struct {
	lowRisk     domain.Weights
	lowRiskErr  error
	lowTurn     domain.Weights
	lowTurnErr  error
	highYield   domain.Weights
	highYldErr  error
	lowTurnSeen bool
}

func (f *fakeStrategies) LowRisk(targetVolatility float64) (domain.Weights, error) {
	return f.lowRisk, f.lowRiskErr
}

func (f *fakeStrategies) LowTurnover(regressor *model.Regressor, targetDate time.Time, windowSize int) (domain.Weights, error) {
	f.lowTurnSeen = true
	return f.lowTurn, f.lowTurnErr
}

func (f *fakeStrategies) HighYield(days int) (domain.Weights, error) {
	return f.highYield, f.highYldErr
}

func newFixture(t *testing.T, fake *fakeStrategies) (*Service, *ledger.SnapshotRepository, *ledger.DealRepository) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema())

	snapshots := ledger.NewSnapshotRepository(db.Conn(), zerolog.Nop())
	deals := ledger.NewDealRepository(db.Conn(), zerolog.Nop())
	return NewService(fake, snapshots, deals, zerolog.Nop()), snapshots, deals
}

func date(s string) time.Time {
	t, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testParams() Params {
	return Params{TargetVolatility: 0.10, WindowSize: 2, HighYieldDays: 14}
}

func testRegressor() *model.Regressor {
	return &model.Regressor{WindowSize: 2, Coefficients: []float64{0.5, 0.5}}
}

func TestRunCycle_RecordsDealsAndSnapshots(t *testing.T) {
	fake := &fakeStrategies{
		lowRisk:   domain.Weights{1: 0.7, 2: 0.3},
		lowTurn:   domain.Weights{3: 1},
		highYield: domain.Weights{4: 2, 5: -1},
	}
	service, snapshots, deals := newFixture(t, fake)

	require.NoError(t, service.RunCycle(date("2024-03-01"), testRegressor(), testParams()))
	assert.True(t, fake.lowTurnSeen)

	for profile, want := range map[domain.Profile]domain.Weights{
		domain.ProfileLowRisk:     fake.lowRisk,
		domain.ProfileLowTurnover: fake.lowTurn,
		domain.ProfileHighYield:   fake.highYield,
	} {
		latest, err := snapshots.Latest(profile)
		require.NoError(t, err)
		require.NotNil(t, latest, "profile %s", profile)
		assert.Equal(t, want, latest.Weights, "profile %s", profile)
	}

	deal, err := deals.Get(date("2024-03-01"))
	require.NoError(t, err)
	require.NotNil(t, deal)
	require.Len(t, deal.Deltas, 3)

	// First cycle: the delta is the full portfolio.
	assert.Equal(t, fake.lowRisk, deal.Deltas[domain.ProfileLowRisk])
}

func TestRunCycle_DealPrecedesSnapshot(t *testing.T) {
	fake := &fakeStrategies{
		lowRisk:    domain.Weights{1: 1},
		lowTurnErr: strategies.ErrNoInvestment,
		highYldErr: strategies.ErrInfeasible,
	}
	service, _, deals := newFixture(t, fake)

	require.NoError(t, service.RunCycle(date("2024-03-01"), testRegressor(), testParams()))

	// Second cycle diffs against the first cycle's snapshot, not the
	// one recorded in the same cycle.
	fake.lowRisk = domain.Weights{1: 0.4, 2: 0.6}
	require.NoError(t, service.RunCycle(date("2024-03-08"), testRegressor(), testParams()))

	deal, err := deals.Get(date("2024-03-08"))
	require.NoError(t, err)
	require.NotNil(t, deal)

	delta := deal.Deltas[domain.ProfileLowRisk]
	assert.InDelta(t, -0.6, delta[1], 1e-12)
	assert.InDelta(t, 0.6, delta[2], 1e-12)
}

func TestRunCycle_NoResultRecordsNoTradeMarker(t *testing.T) {
	fake := &fakeStrategies{
		lowRisk:    domain.Weights{1: 1},
		lowTurnErr: strategies.ErrNoInvestment,
		highYield:  domain.Weights{2: 1},
	}
	service, snapshots, deals := newFixture(t, fake)

	require.NoError(t, service.RunCycle(date("2024-03-01"), testRegressor(), testParams()))

	// The abstaining profile gets a NULL marker and no snapshot.
	latest, err := snapshots.Latest(domain.ProfileLowTurnover)
	require.NoError(t, err)
	assert.Nil(t, latest)

	deal, err := deals.Get(date("2024-03-01"))
	require.NoError(t, err)
	require.NotNil(t, deal)
	_, present := deal.Deltas[domain.ProfileLowTurnover]
	assert.False(t, present)
	assert.Len(t, deal.Deltas, 2)
}

func TestRunCycle_StructuralErrorDoesNotStopOtherProfiles(t *testing.T) {
	boom := errors.New("store unreachable")
	fake := &fakeStrategies{
		lowRiskErr: boom,
		lowTurn:    domain.Weights{1: 1},
		highYield:  domain.Weights{2: 1},
	}
	service, snapshots, _ := newFixture(t, fake)

	err := service.RunCycle(date("2024-03-01"), testRegressor(), testParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The failing profile recorded nothing, the others completed.
	latest, err2 := snapshots.Latest(domain.ProfileLowRisk)
	require.NoError(t, err2)
	assert.Nil(t, latest)

	latest, err2 = snapshots.Latest(domain.ProfileLowTurnover)
	require.NoError(t, err2)
	require.NotNil(t, latest)
}

func TestRunCycle_MissingModelAbstainsLowTurnover(t *testing.T) {
	fake := &fakeStrategies{
		lowRisk:   domain.Weights{1: 1},
		highYield: domain.Weights{2: 1},
	}
	service, snapshots, deals := newFixture(t, fake)

	require.NoError(t, service.RunCycle(date("2024-03-01"), nil, testParams()))

	// Without a regressor the strategy is never invoked; a no-trade
	// marker is recorded instead.
	assert.False(t, fake.lowTurnSeen)

	latest, err := snapshots.Latest(domain.ProfileLowTurnover)
	require.NoError(t, err)
	assert.Nil(t, latest)

	deal, err := deals.Get(date("2024-03-01"))
	require.NoError(t, err)
	require.NotNil(t, deal)
	_, present := deal.Deltas[domain.ProfileLowTurnover]
	assert.False(t, present)
}
