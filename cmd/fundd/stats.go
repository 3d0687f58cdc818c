package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/metrics"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [profile]",
	Short: "Print performance statistics for a profile",
	Long: `Reconstructs the profile's realized daily return series from the
portfolio ledger and prints its summary statistics as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		profile, err := domain.ParseProfile(args[0])
		if err != nil {
			return err
		}

		series, err := a.metrics.ReconstructReturns(profile)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"profile": string(profile),
			"summary": metrics.Summarize(series),
		})
	},
}
