package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/model"
)

var (
	trainStart  string
	trainEnd    string
	trainWindow int
	trainOut    string
)

func init() {
	trainCmd.Flags().StringVar(&trainStart, "start", "", "Training range start as YYYY-MM-DD (required)")
	trainCmd.Flags().StringVar(&trainEnd, "end", "", "Training range end as YYYY-MM-DD (required)")
	trainCmd.Flags().IntVar(&trainWindow, "window", 0, "Sliding window size (default from config)")
	trainCmd.Flags().StringVar(&trainOut, "out", "", "Artifact output path (default from config)")
	trainCmd.MarkFlagRequired("start")
	trainCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the next-return model and save its artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		start, err := time.Parse(domain.DateFormat, trainStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := time.Parse(domain.DateFormat, trainEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		window := trainWindow
		if window == 0 {
			window = a.cfg.ModelWindowSize
		}
		out := trainOut
		if out == "" {
			out = a.cfg.ModelPath
		}

		trainer := model.NewTrainer(a.returns, a.log)
		regressor, err := trainer.Train(start, end, window)
		if err != nil {
			return err
		}

		if err := model.Save(regressor, out); err != nil {
			return err
		}

		a.log.Info().
			Str("path", out).
			Int("window", window).
			Msg("Model artifact saved")
		return nil
	},
}
