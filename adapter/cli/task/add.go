package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/board/application/commands"
	"github.com/davidrzs/Timeboard/internal/board/domain/task"
)

var (
	addPriority    string
	addMinutes     int
	addDescription string
	addDueDate     string
	addProject     string
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task to the board",
	Long: `Add a task. Without a due date it lands in the backlog; a due
date sorts it into today, this week, next week, or later.

Examples:
  timeboard task add "Write quarterly report"
  timeboard task add "Review PR" -p high -m 30 --due 2026-09-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTask == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		priority, err := parsePriority(addPriority)
		if err != nil {
			return err
		}

		create := commands.CreateTaskCommand{
			UserID:           app.CurrentUserID,
			Title:            args[0],
			Description:      addDescription,
			Priority:         priority,
			EstimatedMinutes: addMinutes,
		}

		if addDueDate != "" {
			parsed, err := time.Parse("2006-01-02", addDueDate)
			if err != nil {
				return fmt.Errorf("invalid due date format (use YYYY-MM-DD): %w", err)
			}
			create.DueDate = &parsed
		}
		if addProject != "" {
			projectID, err := uuid.Parse(addProject)
			if err != nil {
				return fmt.Errorf("invalid project id: %w", err)
			}
			create.ProjectID = &projectID
		}

		created, err := app.CreateTask.Handle(cmd.Context(), create)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Printf("Task created: %s\n", created.ID())
		fmt.Printf("  title: %s\n", created.Title())
		fmt.Printf("  horizon: %s\n", created.Horizon(time.Now().UTC()))
		if created.Priority() != task.PriorityNone {
			fmt.Printf("  priority: %s\n", created.Priority())
		}
		if created.EstimatedMinutes() > 0 {
			fmt.Printf("  estimate: %d minutes\n", created.EstimatedMinutes())
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "task priority (high, medium, low)")
	addCmd.Flags().IntVarP(&addMinutes, "minutes", "m", 0, "estimated duration in minutes")
	addCmd.Flags().StringVar(&addDescription, "description", "", "task description")
	addCmd.Flags().StringVar(&addDueDate, "due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addProject, "project", "", "project id")
}
