package plan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/scheduling/application"
)

var (
	generateDate   string
	generateCommit bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Propose a schedule for the day",
	Long: `Propose a schedule: open tasks in priority order, first-fit
into the day's free gaps. Nothing is written unless --commit is given.

Examples:
  timeboard plan generate
  timeboard plan generate --date 2026-09-01
  timeboard plan generate --commit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Planner == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		date, err := parseDate(generateDate)
		if err != nil {
			return err
		}

		plan, err := app.Planner.Generate(cmd.Context(), app.CurrentUserID, date)
		if err != nil {
			return fmt.Errorf("failed to generate plan: %w", err)
		}
		printPlan(plan)

		if !generateCommit {
			return nil
		}
		if err := app.CommitPlan.Handle(cmd.Context(), application.CommitPlanCommand{Plan: plan}); err != nil {
			return fmt.Errorf("failed to commit plan: %w", err)
		}
		fmt.Printf("\nCommitted %d slots.\n", len(plan.Slots))
		return nil
	},
}

func printPlan(plan *application.Plan) {
	fmt.Printf("Plan for %s\n", plan.Date.Format("Monday, 2006-01-02"))
	if plan.Message != "" {
		fmt.Println(plan.Message)
	}
	if len(plan.Slots) == 0 {
		fmt.Println("  nothing to schedule")
	}
	for _, slot := range plan.Slots {
		fmt.Printf("  %s - %s  %s (%d min)\n",
			slot.Start.Format("15:04"), slot.End.Format("15:04"), slot.Title, slot.Minutes)
	}
	if len(plan.Unplaced) > 0 {
		fmt.Println("\nDid not fit:")
		for _, u := range plan.Unplaced {
			fmt.Printf("  %s (%d min): %s\n", u.Title, u.Minutes, u.Reason)
		}
	}
}

func init() {
	generateCmd.Flags().StringVar(&generateDate, "date", "", "day to plan (YYYY-MM-DD, default today)")
	generateCmd.Flags().BoolVar(&generateCommit, "commit", false, "write the proposed slots onto the tasks")
}
