// Package panel implements the "start project" panel controller.
//
// A Controller owns one panel session. It receives structured messages from
// the panel's form, validates create requests, runs the project generator
// asynchronously and reports the outcome through its Host. The controller
// knows nothing about how the form is drawn: the web server, the terminal UI
// and the one-shot command each provide their own Host.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/djhelper/internal/generator"
)

// Errors returned by HandleMessage.
var (
	ErrPanelClosed    = errors.New("panel is closed")
	ErrUnknownCommand = errors.New("unknown panel command")
)

// Host is the application a panel is embedded in.
type Host interface {
	// PostMessage delivers an outbound message to the panel's form.
	PostMessage(msg Message) error
	// ShowInformation and ShowError surface a user-visible notification.
	ShowInformation(text string)
	ShowError(text string)
	// ChooseFolder opens a single-folder selection dialog starting at start.
	// It reports ok=false when the user cancels.
	ChooseFolder(ctx context.Context, start string) (path string, ok bool, err error)
}

// Workspace is the host's ordered list of open root folders.
type Workspace interface {
	Folders() []string
	AddFolder(path string) (bool, error)
}

// Creator runs the project generator.
type Creator interface {
	Create(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// State is the observable lifecycle state of a panel.
type State int

// Panel states.
const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the dependencies of a Controller.
type Config struct {
	// ID identifies the session; a random UUID is used when empty.
	ID        string
	Host      Host
	Workspace Workspace
	Generator Creator
	// DefaultFolder overrides the first workspace folder as the folder
	// pushed into the form once it is ready.
	DefaultFolder string
	Logger        *slog.Logger
}

// Controller handles the messages of one panel session.
type Controller struct {
	id            string
	host          Host
	workspace     Workspace
	generator     Creator
	defaultFolder string
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      State
	ready      bool
	choosing   bool
	lastFolder string
}

// New creates an open panel controller.
func New(cfg Config) *Controller {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	defaultFolder := cfg.DefaultFolder
	if defaultFolder == "" && cfg.Workspace != nil {
		if folders := cfg.Workspace.Folders(); len(folders) > 0 {
			defaultFolder = folders[0]
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:            id,
		host:          cfg.Host,
		workspace:     cfg.Workspace,
		generator:     cfg.Generator,
		defaultFolder: defaultFolder,
		logger:        logger.With("panel", id),
		ctx:           ctx,
		cancel:        cancel,
		lastFolder:    defaultFolder,
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// DefaultFolder returns the folder pushed into the form on ready.
func (c *Controller) DefaultFolder() string {
	return c.defaultFolder
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed when the panel is closed.
func (c *Controller) Done() <-chan struct{} {
	return c.ctx.Done()
}

// HandleMessage dispatches one inbound message. It never blocks on the folder
// dialog or the generator; both run on their own goroutines.
//
// Validation failures are shown to the user and also returned.
func (c *Controller) HandleMessage(msg Message) error {
	if c.State() == StateClosed {
		return ErrPanelClosed
	}

	switch msg.Command {
	case CommandReady:
		c.handleReady()
		return nil
	case CommandChooseFolder:
		return c.handleChooseFolder()
	case CommandCreateProject:
		return c.handleCreateProject(msg)
	default:
		c.logger.Warn("ignoring unknown message", "command", msg.Command)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Command)
	}
}

// Close disposes the panel. A pending folder dialog is cancelled; generator
// runs already dispatched continue to completion.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.mu.Unlock()

	c.cancel()
	c.logger.Debug("panel closed")
}

// Wait blocks until every dialog and generator run started by this panel has
// finished. Once Close has returned no new work can start, so Wait may run
// alongside HandleMessage.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// handleReady pushes the default folder the first time the form reports that
// its listener is attached.
func (c *Controller) handleReady() {
	c.mu.Lock()
	first := !c.ready
	c.ready = true
	c.mu.Unlock()

	if !first || c.defaultFolder == "" {
		return
	}
	c.post(SelectedFolder(c.defaultFolder))
}

func (c *Controller) handleChooseFolder() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrPanelClosed
	}
	if c.choosing {
		c.mu.Unlock()
		c.logger.Debug("folder dialog already open")
		return nil
	}
	c.choosing = true
	start := c.lastFolder
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			c.choosing = false
			c.mu.Unlock()
		}()

		path, ok, err := c.host.ChooseFolder(c.ctx, start)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				c.logger.Error("folder dialog failed", "error", err)
			}
			return
		}
		if !ok || path == "" {
			c.logger.Debug("folder dialog cancelled")
			return
		}

		c.mu.Lock()
		c.lastFolder = path
		c.mu.Unlock()
		c.post(SelectedFolder(path))
	}()
	return nil
}

func (c *Controller) handleCreateProject(msg Message) error {
	req := generator.NewRequest(msg.ProjectName, msg.FolderPath)
	if err := req.Validate(); err != nil {
		switch {
		case errors.Is(err, generator.ErrNoFolder):
			c.host.ShowError(msgSelectFolder)
		case errors.Is(err, generator.ErrEmptyProjectName):
			c.host.ShowError(msgEmptyName)
		}
		return err
	}

	// The closed check and Add share the lock Close takes, so Wait never
	// races a new run.
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrPanelClosed
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		// Closing the panel must not kill a generator that may already have
		// written part of the project.
		ctx := context.WithoutCancel(c.ctx)
		c.runCreate(ctx, req)
	}()
	return nil
}

func (c *Controller) runCreate(ctx context.Context, req generator.Request) {
	_, err := c.generator.Create(ctx, req)
	if err != nil {
		if errors.Is(err, generator.ErrInFlight) {
			c.host.ShowError(fmt.Sprintf("A project is already being created in %s.", req.FolderPath))
			return
		}
		c.host.ShowError("Error: " + err.Error())
		return
	}

	c.host.ShowInformation(fmt.Sprintf("Project '%s' created successfully in %s.", req.ProjectName, req.FolderPath))

	if c.workspace == nil {
		return
	}
	if _, err := c.workspace.AddFolder(req.FolderPath); err != nil {
		c.logger.Error("failed to add folder to workspace", "path", req.FolderPath, "error", err)
	}
}

func (c *Controller) post(msg Message) {
	if c.State() == StateClosed {
		return
	}
	if err := c.host.PostMessage(msg); err != nil {
		c.logger.Warn("failed to post message", "command", msg.Command, "error", err)
	}
}
