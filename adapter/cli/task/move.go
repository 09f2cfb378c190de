package task

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/board/application/commands"
	"github.com/davidrzs/Timeboard/internal/board/domain/task"
)

var moveIndex int

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [bucket]",
	Short: "Move a task to a horizon column or a project list",
	Long: `Move a task. The bucket is a horizon name (today, this_week,
next_week, later, backlog) or project:<id>. Moving to a horizon
rewrites the due date; moving to a project keeps it.

Examples:
  timeboard task move 4f1f... today
  timeboard task move 4f1f... this_week --index 0
  timeboard task move 4f1f... project:7c2a...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.MoveTask == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}
		bucket, err := parseBucket(args[1])
		if err != nil {
			return err
		}

		index := moveIndex
		if index < 0 {
			// Clamped to the end of the bucket.
			index = 1 << 20
		}

		moved, err := app.MoveTask.Handle(cmd.Context(), commands.MoveTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
			Target: bucket,
			Index:  index,
		})
		if err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}

		fmt.Printf("Moved %q to %s at position %d\n", moved.Title(), args[1], moved.Position()+1)
		return nil
	},
}

func parseBucket(s string) (task.Bucket, error) {
	if rest, ok := strings.CutPrefix(s, "project:"); ok {
		projectID, err := uuid.Parse(rest)
		if err != nil {
			return task.Bucket{}, fmt.Errorf("invalid project id in bucket %q: %w", s, err)
		}
		return task.ProjectBucket(projectID), nil
	}
	h := task.Horizon(s)
	if !h.IsValid() {
		return task.Bucket{}, fmt.Errorf("unknown bucket %q (use a horizon name or project:<id>)", s)
	}
	return task.HorizonBucket(h), nil
}

func init() {
	moveCmd.Flags().IntVar(&moveIndex, "index", -1, "target position, 0-based (default: end of bucket)")
}
