package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/djhelper/internal/ui"
	"github.com/spf13/cobra"
)

// OpenPanelOptions holds options for the open-panel command.
type OpenPanelOptions struct {
	Host      string
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewOpenPanelCommand creates the open-panel command.
func NewOpenPanelCommand() *cobra.Command {
	opts := &OpenPanelOptions{}

	cmd := &cobra.Command{
		Use:     "open-panel",
		Aliases: []string{"openStartProjectPanel"},
		Short:   "Open the start project panel in the browser",
		Long: `Start a local web server hosting the start project panel.

Every page load opens a new panel. The panel has two tabs:
- Start Project: pick a folder and a project name, then create the project
- Activate Virtual Env: not available yet

Created folders are added to the workspace file.`,
		Example: `  # Open the panel on the default port
  djhelper open-panel

  # Serve on a custom port without opening a browser
  djhelper open-panel --port 3000 --no-browser

  # Accept connections from other machines
  djhelper open-panel --host 0.0.0.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOpenPanel(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Interface to listen on (default: 127.0.0.1)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Refresh open panels when the workspace file changes")

	return cmd
}

func runOpenPanel(cmd *cobra.Command, opts *OpenPanelOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// Flags already reached cfg through the loader; these cover commands
	// run without the root command.
	host := cfg.UI.Host
	if cmd.Flags().Changed("host") {
		host = opts.Host
	}
	port := cfg.UI.Port
	if cmd.Flags().Changed("port") {
		port = opts.Port
	}
	watch := cfg.Workspace.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}
	autoOpen := cfg.UI.AutoOpen && !opts.NoBrowser

	ws, err := cmdCtx.OpenWorkspace()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}

	server, err := ui.NewServer(ui.Config{
		Workspace:     ws,
		Generator:     cmdCtx.NewGenerator(),
		Host:          host,
		Port:          port,
		Watch:         watch,
		SessionSecret: cfg.UI.SessionSecret,
		DatastarURL:   cfg.UI.DatastarURL,
		DisposeAfter:  cfg.UI.DisposeAfter,
		Logger:        cmdCtx.Logger.With("component", "ui"),
	})
	if err != nil {
		return err
	}

	if autoOpen {
		go openBrowser(server.URL())
	}

	r.Printf("Serving the start project panel on %s\n", r.Link(server.URL(), ""))
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
