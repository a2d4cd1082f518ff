package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quatton/qtoken/pkg/config"
	"github.com/quatton/qtoken/pkg/qlog"
	"github.com/quatton/qtoken/pkg/qtoken"
	"github.com/spf13/cobra"
)

type contextKey string

const (
	configContextKey contextKey = "qtokenconfig"
	loggerContextKey contextKey = "qtokenlogger"
)

type rootOptions struct {
	cfgFile string
	envFile string
	verbose bool
	quiet   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "qtokenctl",
		Short: "Inspect and manage tokens cached in Redis/Valkey",
		Long: `qtokenctl talks to the Redis/Valkey instance (or sentinel group) that
caches authentication tokens. It can store a token and print its proxy, read,
replace or remove a token by proxy, check connectivity, manage the store
password in the OS keyring, and serve the same operations over HTTP.

Settings come from QTOKEN_* environment variables (and a .env file), or from
a YAML file given with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd, cfg, opts)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configContextKey, cfg)
			ctx = context.WithValue(ctx, loggerContextKey, logger)
			cmd.SetContext(ctx)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (YAML); QTOKEN_* variables still override it")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load instead of ./.env")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every store operation")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log warnings and errors")

	root.AddCommand(
		newInsertCmd(),
		newGetCmd(),
		newUpdateCmd(),
		newRemoveCmd(),
		newPingCmd(),
		newServeCmd(),
		newOpenAPICmd(),
		newAuthCmd(),
		newConfigCmd(),
	)
	return root
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.cfgFile != "" {
		return config.LoadFile(opts.cfgFile)
	}
	if opts.envFile != "" {
		return config.FromEnv(opts.envFile)
	}
	return config.FromEnv()
}

func newLogger(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) (*qlog.Logger, error) {
	level, err := qlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	switch {
	case opts.verbose:
		level = slog.LevelDebug
	case opts.quiet:
		level = slog.LevelWarn
	}
	return qlog.NewLogger(level, cmd.ErrOrStderr()), nil
}

// GetConfig retrieves the Config from the command context
func GetConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configContextKey).(*config.Config)
	if !ok {
		return nil, errors.New("no config in context")
	}
	return cfg, nil
}

// GetLogger retrieves the Logger from the command context
func GetLogger(cmd *cobra.Command) *qlog.Logger {
	if logger, ok := cmd.Context().Value(loggerContextKey).(*qlog.Logger); ok {
		return logger
	}
	return qlog.NewDefault()
}

// openRepository connects using the command's config. Callers must Close
// the repository.
func openRepository(cmd *cobra.Command) (*qtoken.Repository, error) {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return nil, err
	}
	return qtoken.Open(cfg, GetLogger(cmd))
}

func Execute() {
	exitIfStoreError(newRootCmd().Execute())
}
