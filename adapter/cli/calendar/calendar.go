package calendar

import (
	"github.com/spf13/cobra"
)

// Cmd is the calendar command group
var Cmd = &cobra.Command{
	Use:   "calendar",
	Short: "Sync and inspect the calendar cache",
	Long: `Mirror your calendars into the local cache and inspect what
the planner sees.`,
}

func init() {
	Cmd.AddCommand(syncCmd)
	Cmd.AddCommand(eventsCmd)
	Cmd.AddCommand(calendarsCmd)
}
