package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/wpieterse/pipegen/internal/errors"
	"github.com/wpieterse/pipegen/internal/pipeline"
)

// Config represents the complete pipegen configuration
type Config struct {
	// Agents is the ordered list of build agents every phase is emitted for
	Agents []string `mapstructure:"agents"`
	// Profile is the name of the pipeline profile to emit (default: "default")
	Profile string `mapstructure:"profile"`
	// Output is the file the manifest is written to; empty means stdout
	Output string `mapstructure:"output"`
	// Profiles defines extra named profiles, keyed by name
	Profiles map[string]ProfileConfig `mapstructure:"profiles"`
	Logging  LoggingConfig            `mapstructure:"logging"`
}

// ProfileConfig describes a user-defined profile
type ProfileConfig struct {
	Description string `mapstructure:"description"`
	// Stages lists phase names and "wait" markers in emission order.
	// Valid phases: build, sqrt-bench, raster-bench, bench
	Stages []string `mapstructure:"stages"`
}

// LoggingConfig controls diagnostic logging. The manifest always goes to
// stdout or the output file; log records never do.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "warn")
	Level string `mapstructure:"level"`
	// File is the log file path; empty means stderr
	File string `mapstructure:"file"`
}

// Default returns a Config that emits the full build-and-bench pipeline for every fleet agent
func Default() *Config {
	return &Config{
		Agents:   pipeline.DefaultAgents(),
		Profile:  pipeline.ProfileDefault,
		Output:   "",
		Profiles: map[string]ProfileConfig{},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("agents", defaults.Agents)
	viper.SetDefault("profile", defaults.Profile)
	viper.SetDefault("output", defaults.Output)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load against an explicit viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewValidationError("cannot decode config").WithCause(err)
	}
	cfg.Agents = normalizeAgents(cfg.Agents)
	// Keys under profiles are lowercased by viper, so the selection must be too
	cfg.Profile = strings.ToLower(strings.TrimSpace(cfg.Profile))

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Registry returns the built-in profiles plus the ones defined in Profiles.
// The config must have passed Validate.
func (c *Config) Registry() (*pipeline.Registry, error) {
	r := pipeline.NewRegistry()
	for name, p := range c.Profiles {
		if err := r.Define(name, p.Description, p.Stages); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// normalizeAgents trims whitespace around agent names. Environment variables
// and comma-separated flags tend to carry stray spaces.
func normalizeAgents(agents []string) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = strings.TrimSpace(a)
	}
	return out
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pipegen")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pipegen"
	}
	return filepath.Join(home, ".config", "pipegen")
}

// ConfigFile returns the path to the user-level config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "pipegen.yaml")
}

// SearchPaths returns the directories searched for pipegen.yaml, in order
func SearchPaths() []string {
	return []string{".", ".buildkite", ConfigDir()}
}
