package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Generator.Command) == "" {
		return fmt.Errorf("generator.command is required")
	}
	if c.Workspace.File == "" {
		return fmt.Errorf("workspace.file is required")
	}
	if c.UI.Host == "" {
		return fmt.Errorf("ui.host is required")
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port out of range: %d", c.UI.Port)
	}
	if c.UI.DisposeAfter < 0 {
		return fmt.Errorf("ui.dispose_after must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.OutputFormat != "" && !slices.Contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (valid: %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	return nil
}

// ParseLogLevel converts a log level name to an slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
	}
}
