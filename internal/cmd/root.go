// Package cmd implements the pipegen command line.
package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wpieterse/pipegen/internal/config"
	"github.com/wpieterse/pipegen/internal/errors"
	"github.com/wpieterse/pipegen/internal/logging"
	"github.com/wpieterse/pipegen/internal/pipeline"
	"github.com/wpieterse/pipegen/internal/watch"
)

// flagKeys maps persistent flags to the config keys they override.
var flagKeys = map[string]string{
	"profile":   "profile",
	"agents":    "agents",
	"output":    "output",
	"log-level": "logging.level",
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipegen",
		Short: "Generate the Buildkite pipeline for the bench fleet",
		Long: `pipegen prints a Buildkite pipeline manifest that builds and benchmarks
the project on every agent in the fleet.

With no flags it emits the default profile (build, wait, square root bench,
rasterizer bench) for the default agents to stdout, ready to pipe into
"buildkite-agent pipeline upload".`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		RunE: runEmit,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is ./pipegen.yaml, ./.buildkite/pipegen.yaml, then "+config.ConfigFile()+")")
	flags.StringP("profile", "p", "", "profile to emit (default \"default\")")
	flags.StringSliceP("agents", "a", nil, "comma-separated agents to emit steps for")
	flags.StringP("output", "o", "", "write the manifest to this file instead of stdout")
	flags.String("log-level", "", "log level: debug, info, warn, error (default \"warn\")")
	rootCmd.Flags().BoolP("watch", "w", false, "regenerate --output whenever the config file changes")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(newProfilesCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func initConfig(cmd *cobra.Command) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	flags := cmd.Root().PersistentFlags()
	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return errors.Wrapf(err, "bind --%s", name)
		}
	}

	if cfgFile, _ := flags.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pipegen")
		viper.SetConfigType("yaml")
		for _, dir := range config.SearchPaths() {
			viper.AddConfigPath(dir)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PIPEGEN")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PIPEGEN_LOGGING_LEVEL for logging.level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config that is missing is an error; a missing default is not
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.NewValidationError("cannot read config file").
			WithField("config").
			WithCause(err)
	}
	return nil
}

// newLogger routes log records to the configured file, or to the command's
// stderr when none is set. The manifest never shares a stream with logs.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if cfg.Logging.File != "" {
		return logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	}
	return logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level), nil
}

func runEmit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	logger = logger.WithCommand("emit")

	if watching, _ := cmd.Flags().GetBool("watch"); watching {
		return runWatch(cmd.Context(), cfg, logger)
	}
	return emit(cmd.OutOrStdout(), cfg, logger)
}

// emit writes the selected profile to cfg.Output, or to stdout when unset.
func emit(stdout io.Writer, cfg *config.Config, logger *logging.Logger) error {
	if cfg.Output != "" {
		return emitFile(cfg, logger)
	}
	emitter, profile, err := prepare(cfg, logger)
	if err != nil {
		return err
	}
	return emitter.Emit(stdout, profile, cfg.Agents)
}

// emitFile atomically replaces cfg.Output with the selected profile.
func emitFile(cfg *config.Config, logger *logging.Logger) error {
	if err := requireOutput(cfg); err != nil {
		return err
	}
	emitter, profile, err := prepare(cfg, logger)
	if err != nil {
		return err
	}
	return watch.WriteFileAtomic(cfg.Output, func(w io.Writer) error {
		return emitter.Emit(w, profile, cfg.Agents)
	})
}

func requireOutput(cfg *config.Config) error {
	if cfg.Output != "" {
		return nil
	}
	return errors.NewValidationError("watch mode writes to a file").
		WithField("output").
		WithCause(errors.New("--watch requires --output or an output key in the config file"))
}

func prepare(cfg *config.Config, logger *logging.Logger) (*pipeline.Emitter, pipeline.Profile, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, pipeline.Profile{}, err
	}
	profile, err := registry.Lookup(cfg.Profile)
	if err != nil {
		return nil, pipeline.Profile{}, err
	}
	return pipeline.NewEmitter(pipeline.WithLogger(logger)), profile, nil
}

// runWatch emits once, then re-reads the config and emits again on every
// change to the config file until ctx is cancelled. A reload that produces
// an invalid config is logged and leaves the last output in place.
func runWatch(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	if err := requireOutput(cfg); err != nil {
		return err
	}
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		return errors.NewValidationError("watch mode needs a config file to watch").WithField("config")
	}
	if err := emitFile(cfg, logger); err != nil {
		return err
	}

	w, err := watch.New(cfgFile, func() error {
		if err := viper.ReadInConfig(); err != nil {
			return errors.NewValidationError("cannot read config file").
				WithField("config").
				WithCause(err)
		}
		next, err := config.Load()
		if err != nil {
			return err
		}
		return emitFile(next, logger)
	}, watch.WithLogger(logger))
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	return w.Run(ctx)
}

// changedFlags lists the persistent flags set on the command line.
func changedFlags(cmd *cobra.Command) []string {
	var names []string
	cmd.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			names = append(names, f.Name)
		}
	})
	return names
}
