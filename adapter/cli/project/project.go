package project

import (
	"github.com/spf13/cobra"
)

// Cmd is the project command group
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create and list projects. Assign tasks with "task move <id> project:<id>".`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
}
