package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/djhelper/internal/testutil"
)

// fakeRunner records invocations and returns a canned outcome.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []Invocation
	stderr  string
	exit    int
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRunner) Run(_ context.Context, inv Invocation) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}

	res := &Result{Invocation: inv, Stderr: f.stderr, ExitCode: f.exit}
	if f.exit != 0 {
		return res, &ProcessError{Invocation: inv, ExitCode: f.exit, Stderr: f.stderr, Err: errors.New("exit status")}
	}
	return res, nil
}

func (f *fakeRunner) invocations() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "valid", req: NewRequest("blog", "/tmp/work")},
		{name: "empty name", req: NewRequest("", "/tmp/work"), wantErr: ErrEmptyProjectName},
		{name: "whitespace name", req: NewRequest(" \t\n ", "/tmp/work"), wantErr: ErrEmptyProjectName},
		{name: "missing folder", req: NewRequest("blog", ""), wantErr: ErrNoFolder},
		{name: "both missing reports folder first", req: NewRequest("", ""), wantErr: ErrNoFolder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewRequestTrimsName(t *testing.T) {
	req := NewRequest("  blog  ", "/tmp/work")
	assert.Equal(t, "blog", req.ProjectName)
	assert.Equal(t, "/tmp/work", req.FolderPath)
}

func TestInvocation(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantArgs []string
	}{
		{
			name:     "default",
			cfg:      Config{},
			wantName: "django-admin",
			wantArgs: []string{"startproject", "blog"},
		},
		{
			name:     "in place",
			cfg:      Config{InPlace: true},
			wantName: "django-admin",
			wantArgs: []string{"startproject", "blog", "."},
		},
		{
			name:     "module invocation",
			cfg:      Config{Command: "python3", Args: []string{"-m", "django"}, InPlace: true},
			wantName: "python3",
			wantArgs: []string{"-m", "django", "startproject", "blog", "."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.cfg)
			inv := g.Invocation(NewRequest("blog", "/tmp/work"))

			assert.Equal(t, tt.wantName, inv.Name)
			assert.Equal(t, tt.wantArgs, inv.Args)
			assert.Equal(t, "/tmp/work", inv.Dir)
		})
	}
}

func TestCreate_RunsOnceWithFolderAsDir(t *testing.T) {
	runner := &fakeRunner{}
	g := New(Config{InPlace: true, Runner: runner, Logger: testutil.NewTestLogger(t)})

	res, err := g.Create(context.Background(), NewRequest("blog", "/tmp/work"))
	require.NoError(t, err)
	require.NotNil(t, res)

	calls := runner.invocations()
	require.Len(t, calls, 1)
	assert.Equal(t, "django-admin startproject blog .", calls[0].String())
	assert.Equal(t, "/tmp/work", calls[0].Dir)
}

func TestCreate_InvalidRequestNeverRuns(t *testing.T) {
	runner := &fakeRunner{}
	g := New(Config{Runner: runner})

	_, err := g.Create(context.Background(), NewRequest("   ", "/tmp/work"))
	assert.ErrorIs(t, err, ErrEmptyProjectName)

	_, err = g.Create(context.Background(), NewRequest("blog", ""))
	assert.ErrorIs(t, err, ErrNoFolder)

	assert.Empty(t, runner.invocations())
}

func TestCreate_ProcessFailure(t *testing.T) {
	runner := &fakeRunner{stderr: "CommandError: 'blog' conflicts with the name of an existing Python module\n", exit: 1}
	g := New(Config{Runner: runner})

	_, err := g.Create(context.Background(), NewRequest("blog", "/tmp/work"))
	require.Error(t, err)

	var perr *ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.ExitCode)
	assert.Equal(t, "CommandError: 'blog' conflicts with the name of an existing Python module", perr.Error())
}

func TestCreate_RejectsOverlappingFolder(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	g := New(Config{Runner: runner})

	done := make(chan error, 1)
	go func() {
		_, err := g.Create(context.Background(), NewRequest("blog", "/tmp/work"))
		done <- err
	}()
	<-runner.started

	assert.True(t, g.InFlight("/tmp/work"))
	_, err := g.Create(context.Background(), NewRequest("shop", "/tmp/work/"))
	assert.ErrorIs(t, err, ErrInFlight)

	close(runner.block)
	require.NoError(t, <-done)
	assert.False(t, g.InFlight("/tmp/work"))
	assert.Len(t, runner.invocations(), 1)
}

func TestCreate_DifferentFoldersRunConcurrently(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{}, 2)}
	g := New(Config{Runner: runner})

	var wg sync.WaitGroup
	for _, dir := range []string{"/tmp/a", "/tmp/b"} {
		wg.Add(1)
		go func(dir string) {
			defer wg.Done()
			_, err := g.Create(context.Background(), NewRequest("blog", dir))
			assert.NoError(t, err)
		}(dir)
	}
	<-runner.started
	<-runner.started
	close(runner.block)
	wg.Wait()

	assert.Len(t, runner.invocations(), 2)
}

func TestProcessError_FallsBackToCause(t *testing.T) {
	err := &ProcessError{Invocation: Invocation{Name: "django-admin"}, ExitCode: -1, Err: errors.New("executable file not found in $PATH")}
	assert.Equal(t, "django-admin: executable file not found in $PATH", err.Error())

	err = &ProcessError{Invocation: Invocation{Name: "django-admin"}, ExitCode: 2}
	assert.Equal(t, "django-admin exited with status 2", err.Error())
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	dir := t.TempDir()

	t.Run("success runs in dir", func(t *testing.T) {
		res, err := ExecRunner{}.Run(context.Background(), Invocation{
			Name: "sh",
			Args: []string{"-c", "touch created && echo ok"},
			Dir:  dir,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "ok\n", res.Stdout)
		_, statErr := os.Stat(filepath.Join(dir, "created"))
		assert.NoError(t, statErr)
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		res, err := ExecRunner{}.Run(context.Background(), Invocation{
			Name: "sh",
			Args: []string{"-c", "echo boom >&2; exit 3"},
			Dir:  dir,
		})
		require.Error(t, err)
		assert.Equal(t, 3, res.ExitCode)

		var perr *ProcessError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 3, perr.ExitCode)
		assert.Equal(t, "boom", perr.Error())
	})

	t.Run("missing binary is a spawn error", func(t *testing.T) {
		_, err := ExecRunner{}.Run(context.Background(), Invocation{
			Name: "djhelper-no-such-binary",
			Dir:  dir,
		})
		require.Error(t, err)

		var perr *ProcessError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, -1, perr.ExitCode)
		assert.Contains(t, perr.Error(), "djhelper-no-such-binary")
	})
}
