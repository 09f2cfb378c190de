package calendar

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
)

var (
	eventsFrom string
	eventsDays int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List cached events",
	Long: `List events from the local cache. The cache is whatever the
last sync brought in; run "calendar sync" first for fresh data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Events == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		from := time.Now().UTC()
		if eventsFrom != "" {
			parsed, err := time.Parse("2006-01-02", eventsFrom)
			if err != nil {
				return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
			}
			from = parsed
		} else {
			from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		}
		to := from.AddDate(0, 0, eventsDays)

		events, err := app.Events.EventsInRange(cmd.Context(), app.CurrentUserID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No cached events in range.")
			return nil
		}

		for _, e := range events {
			when := fmt.Sprintf("%s %s-%s",
				e.Start().Format("2006-01-02"), e.Start().Format("15:04"), e.End().Format("15:04"))
			if e.IsAllDay() {
				when = e.Start().Format("2006-01-02") + " all day"
			}
			line := fmt.Sprintf("  %s  %s", when, e.Title())
			if e.Status() != "confirmed" {
				line += fmt.Sprintf(" [%s]", e.Status())
			}
			fmt.Println(line)
			if cli.Verbose() && e.Location() != "" {
				fmt.Printf("      at: %s\n", e.Location())
			}
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsFrom, "from", "", "start date (YYYY-MM-DD, default today)")
	eventsCmd.Flags().IntVar(&eventsDays, "days", 7, "number of days to show")
}
