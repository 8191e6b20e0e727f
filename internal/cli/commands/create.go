package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/djhelper/internal/cli/output"
	"github.com/leapstack-labs/djhelper/internal/panel"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stdinIsTerminal reports whether the project name can be prompted for.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec
}

// CreateOptions holds options for the create command.
type CreateOptions struct {
	Folder string
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	opts := &CreateOptions{}

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a Django project without opening the panel",
		Long: `Run the project generator once, the way the panel's Create button does.

The project is generated in --folder, or in the first workspace folder, or
in the current directory. The name is prompted for when omitted on a
terminal. On success the folder is added to the workspace.`,
		Example: `  # Create "blog" in the current directory
  djhelper create blog

  # Create in another folder, as a new child directory
  djhelper create blog --folder ~/src --in-place=false`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runCreate(cmd, name, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Folder, "folder", "", "Folder to create the project in")
	_ = cmd.MarkFlagDirname("folder")

	return cmd
}

func runCreate(cmd *cobra.Command, name string, opts *CreateOptions) error {
	cmdCtx := NewCommandContext(cmd)

	ws, err := cmdCtx.OpenWorkspace()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}

	folder, err := resolveFolder(opts.Folder, ws.Folders())
	if err != nil {
		return err
	}

	if name == "" && stdinIsTerminal() {
		name, err = promptProjectName()
		if err != nil {
			return err
		}
	}

	host := &cliHost{r: cmdCtx.Renderer, logger: cmdCtx.Logger}
	ctrl := panel.New(panel.Config{
		Host:      host,
		Workspace: ws,
		Generator: cmdCtx.NewGenerator(),
		Logger:    cmdCtx.Logger,
	})
	defer ctrl.Close()

	cmdCtx.Logger.Debug("creating project", "name", name, "folder", folder)
	err = ctrl.HandleMessage(panel.Message{
		Command:     panel.CommandCreateProject,
		ProjectName: name,
		FolderPath:  folder,
	})
	if err != nil {
		return ErrReported
	}
	ctrl.Wait()

	if host.Failed() {
		return ErrReported
	}
	return nil
}

// resolveFolder picks the target folder: the flag, the first workspace
// folder, then the working directory.
func resolveFolder(flag string, folders []string) (string, error) {
	if flag != "" {
		abs, err := filepath.Abs(flag)
		if err != nil {
			return "", fmt.Errorf("invalid folder %q: %w", flag, err)
		}
		return abs, nil
	}
	if len(folders) > 0 {
		return folders[0], nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return cwd, nil
}

func promptProjectName() (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Project name: ",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return "", fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", errors.New("aborted")
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// cliHost shows panel notifications on the command line.
type cliHost struct {
	r      *output.Renderer
	logger *slog.Logger

	mu     sync.Mutex
	failed bool
}

func (h *cliHost) PostMessage(msg panel.Message) error {
	h.logger.Debug("panel message", "command", msg.Command, "folder", msg.FolderPath)
	return nil
}

func (h *cliHost) ShowInformation(text string) {
	h.r.Success(text)
}

func (h *cliHost) ShowError(text string) {
	h.mu.Lock()
	h.failed = true
	h.mu.Unlock()
	h.r.Error(text)
}

// ChooseFolder has no dialog on the command line; the folder comes from
// flags.
func (h *cliHost) ChooseFolder(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// Failed reports whether an error notification was shown.
func (h *cliHost) Failed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failed
}
