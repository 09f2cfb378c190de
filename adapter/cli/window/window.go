package window

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Cmd is the window command group
var Cmd = &cobra.Command{
	Use:   "window",
	Short: "Manage planning windows",
	Long: `Planning windows are the times of day the planner may fill,
per weekday. Without any, weekdays default to 09:00-12:00 and
14:00-18:00.`,
}

func init() {
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(showCmd)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	if d, ok := weekdays[strings.ToLower(s)]; ok {
		return d, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
