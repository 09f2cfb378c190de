package plan

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/scheduling/application"
)

var commitDate string

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate and commit the day's schedule in one step",
	Long: `Generate the day's plan and write every slot onto its task.
The commit is all-or-nothing: if the board changed since generation,
nothing is written and the command reports the conflict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Planner == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		date, err := parseDate(commitDate)
		if err != nil {
			return err
		}

		plan, err := app.Planner.Generate(cmd.Context(), app.CurrentUserID, date)
		if err != nil {
			return fmt.Errorf("failed to generate plan: %w", err)
		}

		if err := app.CommitPlan.Handle(cmd.Context(), application.CommitPlanCommand{Plan: plan}); err != nil {
			if errors.Is(err, application.ErrCommitConflict) {
				return fmt.Errorf("board changed while planning, rerun to commit: %w", err)
			}
			return fmt.Errorf("failed to commit plan: %w", err)
		}

		printPlan(plan)
		fmt.Printf("\nCommitted %d slots.\n", len(plan.Slots))
		return nil
	},
}

func init() {
	commitCmd.Flags().StringVar(&commitDate, "date", "", "day to plan (YYYY-MM-DD, default today)")
}
