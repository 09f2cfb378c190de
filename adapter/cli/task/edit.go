package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/board/application/commands"
)

var (
	editTitle       string
	editDescription string
	editPriority    string
	editMinutes     int
	editDueDate     string
	editClearDue    bool
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit task fields",
	Long: `Edit a task. Only the given flags change; --clear-due removes
the due date and sends the task to the backlog.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateTask == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		update := commands.UpdateTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
		}
		if cmd.Flags().Changed("title") {
			update.Title = &editTitle
		}
		if cmd.Flags().Changed("description") {
			update.Description = &editDescription
		}
		if cmd.Flags().Changed("priority") {
			priority, err := parsePriority(editPriority)
			if err != nil {
				return err
			}
			update.Priority = &priority
		}
		if cmd.Flags().Changed("minutes") {
			update.EstimatedMinutes = &editMinutes
		}
		if editClearDue {
			update.SetDueDate = true
		}
		if editDueDate != "" {
			parsed, err := time.Parse("2006-01-02", editDueDate)
			if err != nil {
				return fmt.Errorf("invalid due date format (use YYYY-MM-DD): %w", err)
			}
			update.SetDueDate = true
			update.DueDate = &parsed
		}

		updated, err := app.UpdateTask.Handle(cmd.Context(), update)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		fmt.Printf("Task updated: %s\n", updated.Title())
		fmt.Printf("  horizon: %s\n", updated.Horizon(time.Now().UTC()))
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editDescription, "description", "", "new description")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "new priority (high, medium, low, none)")
	editCmd.Flags().IntVarP(&editMinutes, "minutes", "m", 0, "new estimate in minutes")
	editCmd.Flags().StringVar(&editDueDate, "due", "", "new due date (YYYY-MM-DD)")
	editCmd.Flags().BoolVar(&editClearDue, "clear-due", false, "remove the due date")
}
