package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jchevalier/fundsim/internal/scheduler"
	"github.com/jchevalier/fundsim/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fund engine with scheduler and HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.log.Info().Msg("Starting fund engine")

		sched := scheduler.New(a.log)
		rebalanceJob := scheduler.NewRebalanceJob(a.rebalancing, a.cfg.ModelPath, a.params(), a.log)
		if err := sched.AddJob(a.cfg.RebalanceSchedule, rebalanceJob); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		srv := server.New(server.Config{
			Port:         a.cfg.Port,
			Log:          a.log,
			Config:       a.cfg,
			Metrics:      a.metrics,
			Scheduler:    sched,
			RebalanceJob: rebalanceJob,
			DevMode:      a.cfg.DevMode,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		a.log.Info().Int("port", a.cfg.Port).Msg("Server started successfully")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-quit:
		}

		a.log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			a.log.Error().Err(err).Msg("Server forced to shutdown")
		}

		a.log.Info().Msg("Server stopped")
		return nil
	},
}
