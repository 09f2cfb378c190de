package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/board/domain/task"
)

var listProject string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the board",
	Long: `Show the board grouped by horizon, or one project's ordered
task list with --project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Board == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		today := time.Now().UTC()

		if listProject != "" {
			projectID, err := uuid.Parse(listProject)
			if err != nil {
				return fmt.Errorf("invalid project id: %w", err)
			}
			tasks, err := app.Board.ProjectTasks(ctx, app.CurrentUserID, projectID, today)
			if err != nil {
				return fmt.Errorf("failed to list project tasks: %w", err)
			}
			printTasks(tasks, today)
			return nil
		}

		board, err := app.Board.Board(ctx, app.CurrentUserID, today)
		if err != nil {
			return fmt.Errorf("failed to load board: %w", err)
		}

		for _, column := range board.Columns {
			fmt.Printf("\n%s (%d)\n", column.Horizon, len(column.Tasks))
			printTasks(column.Tasks, today)
		}
		return nil
	},
}

func printTasks(tasks []*task.Task, today time.Time) {
	for _, t := range tasks {
		line := fmt.Sprintf("  %2d. %s", t.Position()+1, t.Title())
		if t.Priority() != task.PriorityNone {
			line += fmt.Sprintf(" [%s]", t.Priority())
		}
		if t.DueDate() != nil {
			line += fmt.Sprintf(" (due %s)", t.DueDate().Format("2006-01-02"))
		}
		if t.IsCompleted() {
			line += " ✓"
		}
		fmt.Println(line)
		if cli.Verbose() {
			fmt.Printf("      id: %s\n", t.ID())
		}
	}
}

func init() {
	listCmd.Flags().StringVar(&listProject, "project", "", "list one project's tasks")
}
