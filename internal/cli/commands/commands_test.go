package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/djhelper/internal/cli/config"
	"github.com/leapstack-labs/djhelper/internal/workspace"
)

// loadTestConfig loads configuration rooted at a temp project directory,
// with the given flags set.
func loadTestConfig(t *testing.T, set map[string]string) *config.Config {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-dir", "", "")
	flags.String("workspace-file", "", "")
	flags.String("generator", "", "")
	flags.String("output", "", "")
	flags.Bool("in-place", true, "")

	require.NoError(t, flags.Set("project-dir", t.TempDir()))
	for name, value := range set {
		require.NoError(t, flags.Set(name, value))
	}

	cfg, err := config.LoadConfig("", flags)
	require.NoError(t, err)
	return cfg
}

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeGenerator writes an executable shell script standing in for
// django-admin.
func fakeGenerator(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script generators need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "django-admin")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)) //nolint:gosec
	return path
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd     *cobra.Command
		use     string
		aliases []string
		flags   []string
	}{
		{cmd: NewHelloCommand(), use: "hello", aliases: []string{"helloWorld"}},
		{cmd: NewOpenPanelCommand(), use: "open-panel", aliases: []string{"openStartProjectPanel"}, flags: []string{"host", "port", "no-browser", "watch"}},
		{cmd: NewTUICommand(), use: "tui", flags: []string{"folder"}},
		{cmd: NewCreateCommand(), use: "create [name]", flags: []string{"folder"}},
		{cmd: NewWorkspaceCommand(), use: "workspace", aliases: []string{"ws"}},
		{cmd: NewDoctorCommand(), use: "doctor", flags: []string{"format"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.Equal(t, tt.aliases, nilIfEmpty(tt.cmd.Aliases))
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestWorkspaceCommand_Subcommands(t *testing.T) {
	cmd := NewWorkspaceCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add", "remove"}, names)
}

func TestHelloCommand(t *testing.T) {
	loadTestConfig(t, nil)

	stdout, _, err := execute(t, NewHelloCommand())

	require.NoError(t, err)
	assert.Equal(t, HelloMessage+"\n", stdout)
}

func TestHelloCommand_JSON(t *testing.T) {
	loadTestConfig(t, map[string]string{"output": "json"})

	stdout, _, err := execute(t, NewHelloCommand())

	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, HelloMessage, got["message"])
}

func TestHelloCommand_RejectsArgs(t *testing.T) {
	loadTestConfig(t, nil)

	_, _, err := execute(t, NewHelloCommand(), "extra")

	assert.Error(t, err)
}

func TestWorkspaceCommands(t *testing.T) {
	cfg := loadTestConfig(t, nil)
	dir := t.TempDir()

	stdout, _, err := execute(t, NewWorkspaceCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No workspace folders")

	stdout, _, err = execute(t, NewWorkspaceCommand(), "add", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Added "+dir)

	stdout, _, err = execute(t, NewWorkspaceCommand(), "add", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "already in the workspace")

	stdout, _, err = execute(t, NewWorkspaceCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, dir)
	assert.Contains(t, stdout, filepath.Base(dir))

	ws, err := workspace.Open(cfg.Workspace.File, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, ws.Folders())

	stdout, _, err = execute(t, NewWorkspaceCommand(), "remove", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed "+dir)

	_, stderr, err := execute(t, NewWorkspaceCommand(), "remove", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "is not in the workspace")
}

func TestWorkspaceList_JSON(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{"output": "json"})
	first, second := t.TempDir(), t.TempDir()
	ws, err := workspace.Open(cfg.Workspace.File, nil)
	require.NoError(t, err)
	_, err = ws.AddFolder(first)
	require.NoError(t, err)
	_, err = ws.AddFolder(second)
	require.NoError(t, err)

	stdout, _, err := execute(t, NewWorkspaceCommand(), "list")
	require.NoError(t, err)

	var out WorkspaceListOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, cfg.Workspace.File, out.File)
	require.Len(t, out.Folders, 2)
	assert.Equal(t, WorkspaceFolderOutput{Index: 0, Name: filepath.Base(first), Path: first}, out.Folders[0])
	assert.Equal(t, 1, out.Folders[1].Index)
	assert.Equal(t, second, out.Folders[1].Path)
}

func TestCreateCommand_Success(t *testing.T) {
	gen := fakeGenerator(t, `echo "$@" > invoked.txt`)
	cfg := loadTestConfig(t, map[string]string{"generator": gen})
	folder := t.TempDir()

	stdout, _, err := execute(t, NewCreateCommand(), "blog", "--folder", folder)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Project 'blog' created successfully in "+folder+".")

	invoked, err := os.ReadFile(filepath.Join(folder, "invoked.txt"))
	require.NoError(t, err)
	assert.Equal(t, "startproject blog .\n", string(invoked))

	ws, err := workspace.Open(cfg.Workspace.File, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{folder}, ws.Folders())
}

func TestCreateCommand_NotInPlace(t *testing.T) {
	gen := fakeGenerator(t, `echo "$@" > invoked.txt`)
	loadTestConfig(t, map[string]string{"generator": gen, "in-place": "false"})
	folder := t.TempDir()

	_, _, err := execute(t, NewCreateCommand(), "blog", "--folder", folder)

	require.NoError(t, err)
	invoked, err := os.ReadFile(filepath.Join(folder, "invoked.txt"))
	require.NoError(t, err)
	assert.Equal(t, "startproject blog\n", string(invoked))
}

func TestCreateCommand_DefaultsToFirstWorkspaceFolder(t *testing.T) {
	gen := fakeGenerator(t, `touch manage.py`)
	cfg := loadTestConfig(t, map[string]string{"generator": gen})
	first := t.TempDir()
	ws, err := workspace.Open(cfg.Workspace.File, nil)
	require.NoError(t, err)
	_, err = ws.AddFolder(first)
	require.NoError(t, err)

	_, _, err = execute(t, NewCreateCommand(), "blog")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(first, "manage.py"))
}

func TestCreateCommand_GeneratorFailure(t *testing.T) {
	gen := fakeGenerator(t, `echo "CommandError: 'blog' conflicts with an existing module" >&2; exit 1`)
	cfg := loadTestConfig(t, map[string]string{"generator": gen})
	folder := t.TempDir()

	_, stderr, err := execute(t, NewCreateCommand(), "blog", "--folder", folder)

	require.ErrorIs(t, err, ErrReported)
	assert.Contains(t, stderr, "Error: CommandError: 'blog' conflicts with an existing module")

	ws, err := workspace.Open(cfg.Workspace.File, nil)
	require.NoError(t, err)
	assert.Empty(t, ws.Folders())
}

func TestCreateCommand_EmptyName(t *testing.T) {
	prev := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdinIsTerminal = prev })

	gen := fakeGenerator(t, `touch manage.py`)
	loadTestConfig(t, map[string]string{"generator": gen})
	folder := t.TempDir()

	_, stderr, err := execute(t, NewCreateCommand(), "--folder", folder)

	require.ErrorIs(t, err, ErrReported)
	assert.Contains(t, stderr, "Project name cannot be empty.")
	assert.NoFileExists(t, filepath.Join(folder, "manage.py"))
}

func TestResolveFolder(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got, err := resolveFolder("", nil)
	require.NoError(t, err)
	assert.Equal(t, cwd, got)

	got, err = resolveFolder("", []string{"/srv/first", "/srv/second"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/first", got)

	got, err = resolveFolder("sub", []string{"/srv/first"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "sub"), got)
}
