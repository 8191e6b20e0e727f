package commands

import (
	"errors"
	"log/slog"

	"github.com/leapstack-labs/djhelper/internal/cli/config"
	"github.com/leapstack-labs/djhelper/internal/cli/output"
	"github.com/leapstack-labs/djhelper/internal/generator"
	"github.com/leapstack-labs/djhelper/internal/workspace"
	"github.com/spf13/cobra"
)

// ErrReported is returned by commands that already printed their failure.
// The root command exits non-zero without printing it again.
var ErrReported = errors.New("failure already reported")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenWorkspace loads the configured workspace file.
func (c *CommandContext) OpenWorkspace() (*workspace.Store, error) {
	return workspace.Open(c.Cfg.Workspace.File, c.Logger.With("component", "workspace"))
}

// NewGenerator creates the project generator from the configuration.
func (c *CommandContext) NewGenerator() *generator.Generator {
	return generator.New(generator.Config{
		Command: c.Cfg.Generator.Command,
		Args:    c.Cfg.Generator.Args,
		InPlace: c.Cfg.Generator.InPlace,
		Logger:  c.Logger.With("component", "generator"),
	})
}

// getConfig returns the loaded configuration, or the defaults when a
// command runs without the root command (as in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
