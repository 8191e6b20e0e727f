package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/djhelper/internal/panel"
)

// Config holds the dependencies of a terminal panel.
type Config struct {
	Workspace     panel.Workspace
	Generator     panel.Creator
	DefaultFolder string
	Logger        *slog.Logger
	// Input and Output default to the terminal.
	Input  io.Reader
	Output io.Writer
}

// Run shows the panel as a terminal form until the user quits or ctx is
// cancelled. A generator run still in flight at that point is waited for
// and its outcome logged.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	host := NewHost(logger)
	ctrl := panel.New(panel.Config{
		Host:          host,
		Workspace:     cfg.Workspace,
		Generator:     cfg.Generator,
		DefaultFolder: cfg.DefaultFolder,
		Logger:        logger,
	})

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}

	p := tea.NewProgram(NewModel(ctrl), opts...)
	host.Attach(p)

	_, err := p.Run()

	host.Detach()
	ctrl.Close()
	ctrl.Wait()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
