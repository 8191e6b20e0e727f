package commands

import (
	"fmt"

	"github.com/leapstack-labs/djhelper/internal/tui"
	"github.com/spf13/cobra"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the start project panel in the terminal",
		Long: `Show the start project panel as a terminal form.

Type a project name, press ctrl+o to browse for a folder and enter to
create the project. Press esc to quit; a project still being created is
finished first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)

			ws, err := cmdCtx.OpenWorkspace()
			if err != nil {
				return fmt.Errorf("failed to open workspace: %w", err)
			}

			return tui.Run(cmd.Context(), tui.Config{
				Workspace:     ws,
				Generator:     cmdCtx.NewGenerator(),
				DefaultFolder: folder,
				Logger:        cmdCtx.Logger.With("component", "tui"),
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder to prefill (default: first workspace folder)")

	return cmd
}
