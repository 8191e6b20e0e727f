// Package config provides configuration management for the djhelper CLI.
package config

import "time"

// GeneratorConfig configures the external project generator.
type GeneratorConfig struct {
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
	InPlace bool     `koanf:"in_place"`
}

// WorkspaceConfig configures the workspace folder list.
type WorkspaceConfig struct {
	File  string `koanf:"file"`
	Watch bool   `koanf:"watch"`
}

// UIConfig holds configuration for the panel web server.
type UIConfig struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	AutoOpen      bool          `koanf:"auto_open"`
	DatastarURL   string        `koanf:"datastar_url"`
	SessionSecret string        `koanf:"session_secret"`
	DisposeAfter  time.Duration `koanf:"dispose_after"`
}

// Config holds all CLI configuration options.
type Config struct {
	Generator    GeneratorConfig `koanf:"generator"`
	Workspace    WorkspaceConfig `koanf:"workspace"`
	UI           UIConfig        `koanf:"ui"`
	LogLevel     string          `koanf:"log_level"`
	Verbose      bool            `koanf:"verbose"`
	OutputFormat string          `koanf:"output"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultGeneratorCommand = "django-admin"
	DefaultWorkspaceFile    = ".djhelper/workspace.yaml"
	DefaultHost             = "127.0.0.1"
	DefaultPort             = 8765
	DefaultDatastarURL      = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	DefaultDisposeAfter     = 30 * time.Second
	DefaultLogLevel         = "info"
	DefaultOutput           = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// EnvPrefix is the prefix of environment variables read by the loader.
const EnvPrefix = "DJHELPER_"

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Command: DefaultGeneratorCommand,
			InPlace: true,
		},
		Workspace: WorkspaceConfig{
			File:  DefaultWorkspaceFile,
			Watch: true,
		},
		UI: UIConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			AutoOpen:     true,
			DatastarURL:  DefaultDatastarURL,
			DisposeAfter: DefaultDisposeAfter,
		},
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
	}
}
