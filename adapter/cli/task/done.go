package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/board/application/commands"
)

var doneUndo bool

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Complete a task, or take it back with --undo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteTask == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		t, err := app.CompleteTask.Handle(cmd.Context(), commands.CompleteTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
			Undo:   doneUndo,
		})
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if doneUndo {
			fmt.Printf("Reopened: %s\n", t.Title())
		} else {
			fmt.Printf("Done: %s\n", t.Title())
		}
		return nil
	},
}

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "reopen a completed task")
}
