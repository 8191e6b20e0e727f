package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/djhelper/internal/cli/config"
	"github.com/leapstack-labs/djhelper/internal/cli/output"
	"github.com/leapstack-labs/djhelper/internal/generator"
	"github.com/leapstack-labs/djhelper/internal/workspace"
	"github.com/spf13/cobra"
)

// Check statuses.
const (
	checkPass  = "pass"
	checkWarn  = "warn"
	checkError = "error"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that projects can be created",
		Long: `Check the environment the panel depends on:
- the project generator can be found on PATH
- the workspace file can be read and its folders exist
- which configuration file is in effect

Exits non-zero when a check fails.`,
		Example: `  # Run all checks
  djhelper doctor

  # Output as JSON
  djhelper doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks []HealthCheck `json:"checks"`
	OK     bool          `json:"ok"`
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"` // "pass", "warn", "error"
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	out := buildDoctorOutput(cmdCtx.Cfg, config.GetConfigFileUsed())

	var err error
	if r.EffectiveMode() == output.ModeJSON {
		err = r.JSON(out)
	} else {
		renderDoctorText(r, out)
	}
	if err != nil {
		return err
	}
	if !out.OK {
		return ErrReported
	}
	return nil
}

func buildDoctorOutput(cfg *config.Config, configFile string) *DoctorOutput {
	var checks []HealthCheck
	checks = append(checks, checkGenerator(cfg)...)
	checks = append(checks, checkWorkspace(cfg)...)

	cfgCheck := HealthCheck{Name: "config file", Group: "configuration", Status: checkPass, Detail: configFile}
	if configFile == "" {
		cfgCheck.Detail = "none, using defaults"
	}
	checks = append(checks, cfgCheck)

	out := &DoctorOutput{Checks: checks, OK: true}
	for _, c := range checks {
		if c.Status == checkError {
			out.OK = false
		}
	}
	return out
}

func checkGenerator(cfg *config.Config) []HealthCheck {
	gen := generator.New(generator.Config{
		Command: cfg.Generator.Command,
		Args:    cfg.Generator.Args,
		InPlace: cfg.Generator.InPlace,
	})

	lookup := HealthCheck{Name: gen.Command(), Group: "generator", Status: checkPass}
	if path, err := exec.LookPath(gen.Command()); err != nil {
		lookup.Status = checkError
		lookup.Detail = "not found on PATH; install Django or set generator.command"
	} else {
		lookup.Detail = path
	}

	inv := gen.Invocation(generator.NewRequest("<name>", "<folder>"))
	return []HealthCheck{
		lookup,
		{Name: "invocation", Group: "generator", Status: checkPass, Detail: inv.String()},
	}
}

func checkWorkspace(cfg *config.Config) []HealthCheck {
	file := HealthCheck{Name: "workspace file", Group: "workspace", Status: checkPass, Detail: cfg.Workspace.File}
	if _, err := os.Stat(cfg.Workspace.File); os.IsNotExist(err) {
		file.Detail = cfg.Workspace.File + " (not created yet)"
	}

	ws, err := workspace.Open(cfg.Workspace.File, nil)
	if err != nil {
		file.Status = checkError
		file.Detail = err.Error()
		return []HealthCheck{file}
	}

	checks := []HealthCheck{file}
	for _, path := range ws.Folders() {
		c := HealthCheck{Name: path, Group: "workspace", Status: checkPass}
		info, err := os.Stat(path)
		switch {
		case err != nil:
			c.Status = checkWarn
			c.Detail = "missing"
		case !info.IsDir():
			c.Status = checkWarn
			c.Detail = "not a directory"
		}
		checks = append(checks, c)
	}
	return checks
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Header(1, "djhelper Doctor")
	r.Println(styles.Muted.Render(strings.Repeat("=", 40)))

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("")
			r.Header(2, titleCaser.String(currentGroup))
		}

		status := "success"
		switch check.Status {
		case checkWarn:
			status = "warning"
		case checkError:
			status = "failed"
		}
		r.StatusLine(check.Name, status, check.Detail)
	}

	r.Println("")
	if out.OK {
		r.Success("All checks passed")
	} else {
		r.Error(fmt.Sprintf("%d check(s) failed", countFailed(out.Checks)))
	}
}

func countFailed(checks []HealthCheck) int {
	n := 0
	for _, c := range checks {
		if c.Status == checkError {
			n++
		}
	}
	return n
}
