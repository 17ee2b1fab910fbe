// Package cli defines the jira-ai command-line interface.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/knightmare-26/jira-cli/internal/env"
	"github.com/knightmare-26/jira-cli/internal/logging"
	"github.com/knightmare-26/jira-cli/internal/review"
)

const (
	// defaultEnvFile is loaded from the working directory when present.
	defaultEnvFile = ".env"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath  string
	PolicyPath  string
	EnvFile     string
	LogLevel    logging.Level
	NoAnimation bool

	// Environ is the merged .env and process environment, resolved before any command runs.
	Environ env.Vars
	// CI mirrors the CI environment variable.
	CI string

	prompter review.Prompter
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		EnvFile:  defaultEnvFile,
		LogLevel: logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jira-ai",
		Short:         "jira-ai proposes Jira actions from GitHub activity",
		Long:          "jira-ai reads a pull request, commit or branch, asks a language model which Jira tickets to create, move or comment on, filters the proposals through a policy file, and executes only what you approve.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			vars, err := env.Environ(opts.EnvFile)
			if err != nil {
				return err
			}
			opts.Environ = vars

			var base baseEnv
			if err := parseEnv(&base, vars); err != nil {
				return err
			}
			opts.CI = base.CI

			levelName := cmd.Flag("log-level").Value.String()
			if !cmd.Flags().Changed("log-level") && envPresent(vars, "JIRA_AI_LOG_LEVEL") {
				levelName = base.LogLevel
			}
			if !cmd.Flags().Changed("config") && envPresent(vars, "JIRA_AI_CONFIG") {
				opts.ConfigPath = base.ConfigPath
			}
			if !cmd.Flags().Changed("no-animation") && envPresent(vars, "JIRA_AI_NO_ANIMATION") {
				opts.NoAnimation = base.NoAnimation
			}

			level := logging.ParseLevel(levelName)
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the settings file (default ~/.jira-ai-cli/config.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.PolicyPath, "policy", "p", "", "Path to the policy file (default policy.yaml)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", defaultEnvFile, "Optional .env file merged under the process environment")
	cmd.PersistentFlags().BoolVar(&opts.NoAnimation, "no-animation", false, "Disable the banner and progress animation")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newConfigCommand(opts),
		newSuggestCommand(opts),
		newReviewCommand(opts),
		newPolicyCommand(opts),
		newDoctorCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
