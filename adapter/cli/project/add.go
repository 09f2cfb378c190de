package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidrzs/Timeboard/adapter/cli"
	"github.com/davidrzs/Timeboard/internal/board/application/commands"
)

var addColor string

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateProject == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		created, err := app.CreateProject.Handle(cmd.Context(), commands.CreateProjectCommand{
			UserID: app.CurrentUserID,
			Name:   args[0],
			Color:  addColor,
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("Project created: %s\n", created.ID())
		fmt.Printf("  name: %s\n", created.Name())
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addColor, "color", "", "display color, e.g. #3b82f6")
}
