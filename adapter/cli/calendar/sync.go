package calendar

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync all enabled calendars now",
	Long: `Sync every enabled calendar. Calendars with a valid cursor get
a delta sync; new calendars and expired cursors get a full refresh.
One calendar failing never blocks the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		if app.SyncEngine == nil {
			return fmt.Errorf("no calendar provider configured (set GOOGLE_* or CALDAV_* variables)")
		}

		results, err := app.SyncEngine.SyncAll(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No enabled calendars.")
			return nil
		}

		failed := 0
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				fmt.Printf("  %s: FAILED: %v\n", r.CalendarID, r.Err)
			case r.Skipped:
				fmt.Printf("  %s: skipped, another sync is running\n", r.CalendarID)
			case r.FullSync:
				fmt.Printf("  %s: full refresh, %d events\n", r.CalendarID, r.Created)
			default:
				fmt.Printf("  %s: delta, +%d ~%d -%d\n", r.CalendarID, r.Created, r.Updated, r.Deleted)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d calendars failed", failed, len(results))
		}
		return nil
	},
}
