package window

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/scheduling/domain"
)

var setCmd = &cobra.Command{
	Use:   "set [weekday] [span]...",
	Short: "Replace a weekday's planning windows",
	Long: `Replace a weekday's planning windows. Spans are HH:MM-HH:MM
and stay in the given order. No spans clears the weekday back to the
defaults.

Examples:
  timeboard window set monday 08:00-12:00 13:00-17:00
  timeboard window set saturday`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Windows == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		weekday, err := parseWeekday(args[0])
		if err != nil {
			return err
		}

		windows := make([]*domain.Window, 0, len(args)-1)
		for _, span := range args[1:] {
			start, end, err := domain.ParseWindow(span)
			if err != nil {
				return fmt.Errorf("invalid span %q: %w", span, err)
			}
			w, err := domain.NewWindow(app.CurrentUserID, weekday, start, end)
			if err != nil {
				return err
			}
			windows = append(windows, w)
		}

		if err := app.Windows.ReplaceWeekday(cmd.Context(), app.CurrentUserID, weekday, windows); err != nil {
			return fmt.Errorf("failed to save windows: %w", err)
		}

		if len(windows) == 0 {
			fmt.Printf("Cleared %s, defaults apply.\n", weekday)
			return nil
		}
		fmt.Printf("Set %d windows for %s:\n", len(windows), weekday)
		for _, w := range windows {
			fmt.Printf("  %s\n", w)
		}
		return nil
	},
}
