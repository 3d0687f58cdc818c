package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/model"
)

var rebalanceDate string

func init() {
	rebalanceCmd.Flags().StringVar(&rebalanceDate, "date", "", "Cycle date as YYYY-MM-DD (default today)")
	rootCmd.AddCommand(rebalanceCmd)
}

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Run one rebalancing cycle for every profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		date := time.Now().UTC().Truncate(24 * time.Hour)
		if rebalanceDate != "" {
			date, err = time.Parse(domain.DateFormat, rebalanceDate)
			if err != nil {
				return err
			}
		}

		regressor, err := model.Load(a.cfg.ModelPath)
		if err != nil {
			a.log.Warn().
				Err(err).
				Str("path", a.cfg.ModelPath).
				Msg("Model artifact unavailable, proceeding without predictions")
			regressor = nil
		}

		return a.rebalancing.RunCycle(date, regressor, a.params())
	},
}
