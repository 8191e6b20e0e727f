// Package generator runs the external project generator (django-admin) that
// does the actual scaffolding work.
//
// The generator is treated as an opaque black box: an invocation succeeds when
// the process exits with status zero, and its standard error stream is the
// diagnostic payload on failure.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Default generator settings.
const (
	DefaultCommand    = "django-admin"
	DefaultSubcommand = "startproject"
)

// Sentinel errors returned by Create.
var (
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrNoFolder         = errors.New("no folder selected")
	ErrInFlight         = errors.New("a project is already being created in this folder")
)

// Request is a single scaffolding request built from user input.
type Request struct {
	ProjectName string
	FolderPath  string
}

// NewRequest builds a request from raw form input, trimming the project name.
func NewRequest(projectName, folderPath string) Request {
	return Request{
		ProjectName: strings.TrimSpace(projectName),
		FolderPath:  folderPath,
	}
}

// Validate checks that both fields are present. The folder is checked first.
func (r Request) Validate() error {
	if r.FolderPath == "" {
		return ErrNoFolder
	}
	if strings.TrimSpace(r.ProjectName) == "" {
		return ErrEmptyProjectName
	}
	return nil
}

// Config holds configuration for a Generator.
type Config struct {
	// Command is the generator binary, resolved through PATH.
	Command string
	// Args are inserted before the subcommand, e.g. ["-m", "django"] when
	// Command is "python".
	Args []string
	// InPlace appends "." so the project is generated directly inside the
	// target folder instead of a new child directory.
	InPlace bool
	Runner  Runner
	Logger  *slog.Logger
}

// Generator builds and runs generator invocations.
type Generator struct {
	command string
	args    []string
	inPlace bool
	runner  Runner
	guard   *folderGuard
	logger  *slog.Logger
}

// New creates a Generator. Zero values fall back to django-admin run via
// os/exec.
func New(cfg Config) *Generator {
	command := cfg.Command
	if command == "" {
		command = DefaultCommand
	}
	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Generator{
		command: command,
		args:    append([]string(nil), cfg.Args...),
		inPlace: cfg.InPlace,
		runner:  runner,
		guard:   newFolderGuard(),
		logger:  logger,
	}
}

// Command returns the generator binary name.
func (g *Generator) Command() string {
	return g.command
}

// Invocation returns the process invocation for a request.
func (g *Generator) Invocation(req Request) Invocation {
	args := make([]string, 0, len(g.args)+3)
	args = append(args, g.args...)
	args = append(args, DefaultSubcommand, req.ProjectName)
	if g.inPlace {
		args = append(args, ".")
	}
	return Invocation{
		Name: g.command,
		Args: args,
		Dir:  req.FolderPath,
	}
}

// Create validates the request and runs the generator for it.
//
// Only one invocation per folder may be outstanding; a second request for the
// same folder fails with ErrInFlight until the first completes. There is no
// timeout: a hung generator blocks only its own request.
func (g *Generator) Create(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := folderKey(req.FolderPath)
	if !g.guard.acquire(key) {
		return nil, fmt.Errorf("%w: %s", ErrInFlight, req.FolderPath)
	}
	defer g.guard.release(key)

	inv := g.Invocation(req)
	g.logger.Info("running generator", "command", inv.String(), "dir", inv.Dir)

	start := time.Now()
	res, err := g.runner.Run(ctx, inv)
	if res != nil {
		res.Duration = time.Since(start)
	}
	if err != nil {
		g.logger.Warn("generator failed", "command", inv.String(), "error", err)
		return res, err
	}

	g.logger.Info("generator finished", "project", req.ProjectName, "dir", inv.Dir, "duration", res.Duration)
	return res, nil
}

// InFlight reports whether an invocation for folder is outstanding.
func (g *Generator) InFlight(folder string) bool {
	return g.guard.held(folderKey(folder))
}

func folderKey(folder string) string {
	if abs, err := filepath.Abs(folder); err == nil {
		return abs
	}
	return filepath.Clean(folder)
}

// folderGuard is a set of folders with an outstanding invocation.
type folderGuard struct {
	mu      sync.Mutex
	folders map[string]struct{}
}

func newFolderGuard() *folderGuard {
	return &folderGuard{folders: make(map[string]struct{})}
}

func (g *folderGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.folders[key]; busy {
		return false
	}
	g.folders[key] = struct{}{}
	return true
}

func (g *folderGuard) release(key string) {
	g.mu.Lock()
	delete(g.folders, key)
	g.mu.Unlock()
}

func (g *folderGuard) held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.folders[key]
	return busy
}
