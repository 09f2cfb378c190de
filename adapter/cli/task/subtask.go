package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/board/application/commands"
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage a task's checklist",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add [task-id] [title]",
	Short: "Append a checklist step to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddSubtask == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		s, err := app.AddSubtask.Handle(cmd.Context(), commands.AddSubtaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
			Title:  args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to add subtask: %w", err)
		}

		fmt.Printf("Added subtask %s: %s\n", s.ID(), s.Title())
		return nil
	},
}

var subtaskListCmd = &cobra.Command{
	Use:   "list [task-id]",
	Short: "Show a task's checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Board == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		subtasks, err := app.Board.Subtasks(cmd.Context(), app.CurrentUserID, taskID)
		if err != nil {
			return fmt.Errorf("failed to list subtasks: %w", err)
		}
		if len(subtasks) == 0 {
			fmt.Println("No subtasks yet.")
			return nil
		}

		for _, s := range subtasks {
			mark := " "
			if s.IsCompleted() {
				mark = "x"
			}
			fmt.Printf("  [%s] %d. %s\n", mark, s.Position()+1, s.Title())
			if cli.Verbose() {
				fmt.Printf("         id: %s\n", s.ID())
			}
		}
		return nil
	},
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle [subtask-id]",
	Short: "Check or uncheck a checklist step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ToggleSubtask == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		subtaskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subtask id: %w", err)
		}

		s, err := app.ToggleSubtask.Handle(cmd.Context(), commands.ToggleSubtaskCommand{
			UserID:    app.CurrentUserID,
			SubtaskID: subtaskID,
		})
		if err != nil {
			return fmt.Errorf("failed to toggle subtask: %w", err)
		}

		if s.IsCompleted() {
			fmt.Printf("Checked: %s\n", s.Title())
		} else {
			fmt.Printf("Unchecked: %s\n", s.Title())
		}
		return nil
	},
}

var subtaskRmCmd = &cobra.Command{
	Use:   "rm [subtask-id]",
	Short: "Delete a checklist step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteSubtask == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		subtaskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subtask id: %w", err)
		}

		err = app.DeleteSubtask.Handle(cmd.Context(), commands.DeleteSubtaskCommand{
			UserID:    app.CurrentUserID,
			SubtaskID: subtaskID,
		})
		if err != nil {
			return fmt.Errorf("failed to delete subtask: %w", err)
		}

		fmt.Printf("Deleted subtask %s\n", subtaskID)
		return nil
	},
}

func init() {
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskListCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	subtaskCmd.AddCommand(subtaskRmCmd)
}
