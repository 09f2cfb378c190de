package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Board == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projects, err := app.Board.Projects(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects yet.")
			return nil
		}

		for _, p := range projects {
			line := fmt.Sprintf("  %s  %s", p.ID(), p.Name())
			if p.Color() != "" {
				line += fmt.Sprintf(" (%s)", p.Color())
			}
			fmt.Println(line)
		}
		return nil
	},
}
