package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/djhelper/internal/cli/config"
	"github.com/leapstack-labs/djhelper/internal/cli/testutil"
	"github.com/leapstack-labs/djhelper/internal/workspace"
)

func findCheck(t *testing.T, out *DoctorOutput, group, name string) HealthCheck {
	t.Helper()
	for _, c := range out.Checks {
		if c.Group == group && c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s check named %q in %+v", group, name, out.Checks)
	return HealthCheck{}
}

func TestBuildDoctorOutput(t *testing.T) {
	gen := fakeGenerator(t, "exit 0")
	present := t.TempDir()
	missing := filepath.Join(t.TempDir(), "gone")

	cfg := config.Default()
	cfg.Generator.Command = gen
	cfg.Workspace.File = filepath.Join(t.TempDir(), "workspace.yaml")
	ws, err := workspace.Open(cfg.Workspace.File, nil)
	require.NoError(t, err)
	_, err = ws.AddFolder(present)
	require.NoError(t, err)
	_, err = ws.AddFolder(missing)
	require.NoError(t, err)

	out := buildDoctorOutput(cfg, "")

	assert.True(t, out.OK)
	assert.Equal(t, checkPass, findCheck(t, out, "generator", gen).Status)
	assert.Equal(t, gen+" startproject <name> .", findCheck(t, out, "generator", "invocation").Detail)
	assert.Equal(t, checkPass, findCheck(t, out, "workspace", present).Status)
	assert.Equal(t, checkWarn, findCheck(t, out, "workspace", missing).Status)
	assert.Equal(t, "none, using defaults", findCheck(t, out, "configuration", "config file").Detail)
}

func TestBuildDoctorOutput_MissingGenerator(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.Command = "djhelper-no-such-generator"
	cfg.Workspace.File = filepath.Join(t.TempDir(), "workspace.yaml")

	out := buildDoctorOutput(cfg, "/srv/app/djhelper.yaml")

	assert.False(t, out.OK)
	assert.Equal(t, checkError, findCheck(t, out, "generator", "djhelper-no-such-generator").Status)
	assert.Contains(t, findCheck(t, out, "workspace", "workspace file").Detail, "not created yet")
	assert.Equal(t, "/srv/app/djhelper.yaml", findCheck(t, out, "configuration", "config file").Detail)
	assert.Equal(t, 1, countFailed(out.Checks))
}

func TestDoctorCommand_JSON(t *testing.T) {
	loadTestConfig(t, map[string]string{"generator": "djhelper-no-such-generator"})

	stdout, _, err := execute(t, NewDoctorCommand(), "--format", "json")

	require.ErrorIs(t, err, ErrReported)
	var out DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.OK)
	assert.NotEmpty(t, out.Checks)
}

func TestDoctorCommand_Text(t *testing.T) {
	gen := fakeGenerator(t, "exit 0")
	loadTestConfig(t, map[string]string{"generator": gen})

	stdout, _, err := execute(t, NewDoctorCommand())

	require.NoError(t, err)
	assert.Contains(t, stdout, "Generator")
	assert.Contains(t, stdout, "Workspace")
	assert.Contains(t, stdout, "All checks passed")
}

func TestRenderDoctorText(t *testing.T) {
	out := &DoctorOutput{
		OK: false,
		Checks: []HealthCheck{
			{Name: "django-admin", Group: "generator", Status: checkError, Detail: "not found on PATH"},
			{Name: "/srv/gone", Group: "workspace", Status: checkWarn, Detail: "missing"},
		},
	}

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		renderDoctorText(tr.Renderer, out)

		testutil.AssertNoANSI(t, tr.Output())
		testutil.AssertValidMarkdown(t, tr.Output())
		assert.Contains(t, tr.Output(), "## Generator")
		assert.Contains(t, tr.Output(), "[failed] django-admin")
		assert.Contains(t, tr.ErrorOutput(), "1 check(s) failed")
	})

	t.Run("text", func(t *testing.T) {
		tr := testutil.NewTestRendererText()
		renderDoctorText(tr.Renderer, out)

		assert.Contains(t, tr.Output(), "✗")
		assert.Contains(t, tr.Output(), "Workspace")
	})
}
