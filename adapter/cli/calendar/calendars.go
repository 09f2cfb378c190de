package calendar

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "Show per-calendar sync state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Events == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		views, err := app.Events.Calendars(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("failed to list calendars: %w", err)
		}
		if len(views) == 0 {
			fmt.Println("No calendars known yet, run \"timeboard calendar sync\".")
			return nil
		}

		for _, v := range views {
			s := v.State
			status := "disabled"
			if s.Enabled() {
				status = string(s.Phase())
			}
			fmt.Printf("  %s (%s)\n", s.Name(), s.CalendarID())
			fmt.Printf("      state: %s, %d cached events\n", status, len(v.Events))
			if !s.LastSyncedAt().IsZero() {
				fmt.Printf("      last synced: %s\n", s.LastSyncedAt().Format("2006-01-02 15:04"))
			}
			if s.SyncErrors() > 0 {
				fmt.Printf("      failures: %d, last: %s\n", s.SyncErrors(), s.LastError())
			}
		}
		return nil
	},
}
