package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jchevalier/fundsim/internal/config"
	"github.com/jchevalier/fundsim/internal/database"
	"github.com/jchevalier/fundsim/internal/modules/ledger"
	"github.com/jchevalier/fundsim/internal/modules/metrics"
	"github.com/jchevalier/fundsim/internal/modules/rebalancing"
	"github.com/jchevalier/fundsim/internal/modules/returns"
	"github.com/jchevalier/fundsim/internal/modules/strategies"
	"github.com/jchevalier/fundsim/internal/modules/universe"
	"github.com/jchevalier/fundsim/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fundd",
	Short: "Simulated multi-profile fund engine",
	Long: `fundd maintains a store of weekly asset returns, rebalances three
portfolio profiles (low_risk, low_turnover, high_yield) on a schedule,
and reconstructs realized performance from the portfolio ledger.`,
	SilenceUsage: true,
}

// app bundles the wired-up services every subcommand starts from.
type app struct {
	cfg         *config.Config
	log         zerolog.Logger
	db          *database.DB
	assets      *universe.AssetRepository
	returns     *returns.Repository
	snapshots   *ledger.SnapshotRepository
	deals       *ledger.DealRepository
	strategies  *strategies.Service
	metrics     *metrics.Service
	rebalancing *rebalancing.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		assets:    universe.NewAssetRepository(db.Conn(), log),
		returns:   returns.NewRepository(db.Conn(), log),
		snapshots: ledger.NewSnapshotRepository(db.Conn(), log),
		deals:     ledger.NewDealRepository(db.Conn(), log),
	}
	a.strategies = strategies.NewService(a.assets, a.returns, log)
	a.metrics = metrics.NewService(a.snapshots, a.returns, log)
	a.rebalancing = rebalancing.NewService(a.strategies, a.snapshots, a.deals, log)

	return a, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Error().Err(err).Msg("Failed to close database")
	}
}

func (a *app) params() rebalancing.Params {
	return rebalancing.Params{
		TargetVolatility: a.cfg.TargetVolatility,
		WindowSize:       a.cfg.ModelWindowSize,
		HighYieldDays:    a.cfg.HighYieldDays,
	}
}
