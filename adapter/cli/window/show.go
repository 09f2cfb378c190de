package window

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/scheduling/domain"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the week's planning windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Windows == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		windows, err := app.Windows.FindByUser(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("failed to load windows: %w", err)
		}

		byDay := make(map[time.Weekday][]*domain.Window, len(windows))
		for _, w := range windows {
			byDay[w.Weekday()] = append(byDay[w.Weekday()], w)
		}

		var defaults []string
		for _, iv := range domain.DefaultIntervals(time.Now().UTC()) {
			defaults = append(defaults, iv.Start.Format("15:04")+"-"+iv.End.Format("15:04"))
		}

		for day := time.Monday; ; day = (day + 1) % 7 {
			spans := byDay[day]
			if len(spans) == 0 {
				fmt.Printf("  %-10s default (%s)\n", day, strings.Join(defaults, ", "))
			} else {
				line := fmt.Sprintf("  %-10s", day)
				for i, w := range spans {
					if i > 0 {
						line += ", "
					}
					line += w.String()
				}
				fmt.Println(line)
			}
			if day == time.Sunday {
				break
			}
		}
		return nil
	},
}
