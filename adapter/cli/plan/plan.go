package plan

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Cmd is the plan command group
var Cmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a day around your calendar",
	Long: `Pack open tasks into the day's free windows, skipping calendar
events plus a travel buffer.`,
}

func init() {
	Cmd.AddCommand(generateCmd)
	Cmd.AddCommand(commitCmd)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}
	return parsed, nil
}
