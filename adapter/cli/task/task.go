package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks on the board",
	Long:  `Create, list, move, complete, and delete tasks.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(moveCmd)
	Cmd.AddCommand(editCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(rmCmd)
	Cmd.AddCommand(subtaskCmd)
}

func parsePriority(s string) (task.Priority, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return task.PriorityNone, nil
	case "high":
		return task.PriorityHigh, nil
	case "medium":
		return task.PriorityMedium, nil
	case "low":
		return task.PriorityLow, nil
	}
	return task.PriorityNone, fmt.Errorf("unknown priority %q (use high, medium, low)", s)
}
