package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Invocation describes one external process run.
type Invocation struct {
	Name string
	Args []string
	Dir  string
}

// String renders the invocation as a command line, for logs and messages.
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Name
	}
	return i.Name + " " + strings.Join(i.Args, " ")
}

// Result holds the outcome of a finished invocation.
type Result struct {
	Invocation Invocation
	Stdout     string
	Stderr     string
	ExitCode   int
	Duration   time.Duration
}

// Runner executes invocations. Implementations must return a *ProcessError
// for spawn failures and non-zero exits.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

// ProcessError is returned when the generator could not be started or exited
// with a non-zero status.
type ProcessError struct {
	Invocation Invocation
	ExitCode   int
	Stderr     string
	Err        error
}

// Error returns the generator's diagnostic output, or the underlying error
// when the process wrote nothing to stderr.
func (e *ProcessError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Invocation.Name, e.Err)
	}
	return fmt.Sprintf("%s exited with status %d", e.Invocation.Name, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ExecRunner runs invocations with os/exec, without a shell.
type ExecRunner struct {
	// Env, when non-nil, replaces the inherited process environment.
	Env []string
}

// Run starts the process and waits for it to exit.
func (r ExecRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{
		Invocation: inv,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err == nil {
		return res, nil
	}

	perr := &ProcessError{
		Invocation: inv,
		ExitCode:   res.ExitCode,
		Stderr:     res.Stderr,
		Err:        err,
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// The process never started (binary missing, bad cwd).
		perr.ExitCode = -1
		res.ExitCode = -1
	}
	return res, perr
}
