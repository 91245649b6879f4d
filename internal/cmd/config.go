package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wpieterse/pipegen/internal/config"
	"github.com/wpieterse/pipegen/internal/errors"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View pipegen configuration",
		Long: `View pipegen configuration.

Without arguments, displays the resolved configuration.
Use subcommands to locate or create a config file.`,
		Args: noArgs,
		RunE: runConfigShow,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  noArgs,
		RunE:  runConfigShow,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the config file path and search paths",
		Args:  noArgs,
		RunE:  runConfigPath,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long:  `Create a commented config file at ` + config.ConfigFile() + ` with every available option.`,
		Args:  noArgs,
		RunE:  runConfigInit,
	})

	return configCmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	if flags := changedFlags(cmd); len(flags) > 0 {
		fmt.Fprintf(out, "# Overridden by flags: --%s\n", strings.Join(flags, ", --"))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	_, err = out.Write(data)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	for i, dir := range config.SearchPaths() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, filepath.Join(dir, "pipegen.yaml"))
	}
	fmt.Fprintln(out, "\nEnvironment variables: PIPEGEN_* (e.g., PIPEGEN_PROFILE, PIPEGEN_LOGGING_LEVEL)")

	return nil
}

const configTemplate = `# pipegen configuration

# Agents every phase is emitted for, in order
agents:
%s
# Profile emitted when --profile is not given
# Built-in: default, compact, build, bench
profile: default

# Write the manifest to this file instead of stdout
# output: .buildkite/pipeline.yml

# Extra profiles. Stages are phase names or "wait".
# Phases: build, sqrt-bench, raster-bench, bench
# profiles:
#   nightly:
#     description: Build, then the rasterizer bench only
#     stages: [build, wait, raster-bench]

logging:
  # debug, info, warn, error
  level: warn
  # Log file; stderr when empty
  # file: /tmp/pipegen.log
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var agents strings.Builder
	for _, a := range config.Default().Agents {
		fmt.Fprintf(&agents, "  - %s\n", a)
	}

	content := fmt.Sprintf(configTemplate, agents.String())
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}
