package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/djhelper/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewWorkspaceCommand creates the workspace command and its subcommands.
func NewWorkspaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage the workspace folder list",
		Long: `List, add and remove the root folders of the workspace.

The first folder prefills the panel's folder field. Folders of created
projects are appended automatically.`,
	}

	cmd.AddCommand(newWorkspaceListCommand())
	cmd.AddCommand(newWorkspaceAddCommand())
	cmd.AddCommand(newWorkspaceRemoveCommand())

	return cmd
}

// WorkspaceFolderOutput is the JSON form of one workspace folder.
type WorkspaceFolderOutput struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Path  string `json:"path"`
}

// WorkspaceListOutput is the JSON output of workspace list.
type WorkspaceListOutput struct {
	File    string                  `json:"file"`
	Folders []WorkspaceFolderOutput `json:"folders"`
}

func newWorkspaceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workspace folders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			ws, err := cmdCtx.OpenWorkspace()
			if err != nil {
				return err
			}

			out := WorkspaceListOutput{
				File:    ws.Path(),
				Folders: []WorkspaceFolderOutput{},
			}
			for i, f := range ws.Entries() {
				out.Folders = append(out.Folders, WorkspaceFolderOutput{Index: i, Name: f.Name, Path: f.Path})
			}

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(out)
			}

			if len(out.Folders) == 0 {
				r.Muted("No workspace folders in " + out.File)
				return nil
			}

			rows := make([][]string, 0, len(out.Folders))
			for _, f := range out.Folders {
				rows = append(rows, []string{strconv.Itoa(f.Index), f.Name, f.Path})
			}
			r.Table([]string{"#", "Name", "Path"}, rows)
			return nil
		},
	}
}

func newWorkspaceAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <folder>",
		Short: "Append a folder to the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			ws, err := cmdCtx.OpenWorkspace()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("invalid folder %q: %w", args[0], err)
			}

			added, err := ws.AddFolder(path)
			if err != nil {
				return err
			}
			if !added {
				cmdCtx.Renderer.Info(path + " is already in the workspace")
				return nil
			}
			cmdCtx.Renderer.Success("Added " + path)
			return nil
		},
	}
	return cmd
}

func newWorkspaceRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <folder>",
		Aliases: []string{"rm"},
		Short:   "Remove a folder from the workspace",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			ws, err := cmdCtx.OpenWorkspace()
			if err != nil {
				return err
			}

			removed, err := ws.RemoveFolder(args[0])
			if err != nil {
				return err
			}
			if !removed {
				cmdCtx.Renderer.Warning(args[0] + " is not in the workspace")
				return nil
			}
			cmdCtx.Renderer.Success("Removed " + args[0])
			return nil
		},
	}
}
