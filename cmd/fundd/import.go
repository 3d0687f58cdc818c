package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jchevalier/fundsim/internal/clients/yahoo"
	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/returns"
)

var (
	importStart string
	importEnd   string
)

func init() {
	importCmd.Flags().StringVar(&importStart, "start", "", "Price range start as YYYY-MM-DD (required)")
	importCmd.Flags().StringVar(&importEnd, "end", "", "Price range end as YYYY-MM-DD (default today)")
	importCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch prices for the asset universe and store weekly returns",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		start, err := time.Parse(domain.DateFormat, importStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end := time.Now().UTC()
		if importEnd != "" {
			end, err = time.Parse(domain.DateFormat, importEnd)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}

		importer := returns.NewImporter(a.assets, a.returns, yahoo.NewClient(a.log), a.log)
		inserted, err := importer.Run(start, end)
		if err != nil {
			return err
		}

		a.log.Info().Int("returns", inserted).Msg("Import finished")
		return nil
	},
}
