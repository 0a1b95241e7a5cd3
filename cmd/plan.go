package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusmeet/planner-cli/internal/planner"
	"github.com/campusmeet/planner-cli/internal/store"
)

var (
	planDryRun       bool
	planMinAttendees int
)

var planCmd = &cobra.Command{
	Use:   "plan <interest>",
	Short: "Plan one event for a single interest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		interest, err := e.Store.GetInterestByName(ctx, name)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				iid, err := e.Store.EnsureInterest(ctx, name, planMinAttendees)
				if err != nil {
					return err
				}
				zap.L().Info("created interest", zap.String("interest", name), zap.Int64("iid", iid))
				interest, err = e.Store.GetInterestByName(ctx, name)
				if err != nil {
					return err
				}
			} else {
				return err
			}
		}

		existing, err := e.Store.ListFutureEvents(ctx, interest.ID)
		if err != nil {
			return err
		}

		result, err := e.Planner.Plan(ctx, planner.Request{
			Interest: interest.Name,
			Existing: existing,
		})
		if err != nil {
			return err
		}

		if !planDryRun {
			eid, err := e.Store.InsertPlannedEvent(ctx, interest.ID, result.Row)
			if err != nil {
				return err
			}
			zap.L().Info("event stored", zap.String("eid", eid))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	planCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "plan without persisting")
	planCmd.Flags().IntVar(&planMinAttendees, "min-attendees", 5, "headcount threshold when creating a new interest")
	rootCmd.AddCommand(planCmd)
}
