package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/campusmeet/planner-cli/internal/sweep"
)

var (
	sweepDryRun      bool
	sweepConcurrency int
	sweepLimit       int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Plan events for every underserved interest",
	Long:  "Estimates the demand gap for each interest and creates one event per interest that is short. Intended to run daily from cron.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		concurrency := sweepConcurrency
		if concurrency == 0 {
			concurrency = cfg.Sweep.Concurrency
		}
		limit := sweepLimit
		if limit == 0 {
			limit = cfg.Sweep.Limit
		}

		result, err := e.Sweeper.Run(ctx, sweep.Options{
			Concurrency: concurrency,
			Limit:       limit,
			DryRun:      sweepDryRun,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "estimate and plan without persisting")
	sweepCmd.Flags().IntVar(&sweepConcurrency, "concurrency", 0, "interests processed in parallel (default from config)")
	sweepCmd.Flags().IntVar(&sweepLimit, "limit", 0, "max events to create in one sweep (default from config)")
	rootCmd.AddCommand(sweepCmd)
}
