package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/knightmare-26/jira-cli/internal/config"
	"github.com/knightmare-26/jira-cli/internal/llm"
)

// newConfigCommand groups settings management subcommands.
func newConfigCommand(opts *Options) *cobra.Command {
	return newGroupCommand("config", "Manage jira-ai settings",
		newConfigInitCommand(opts),
		newConfigShowCommand(opts),
		newConfigPathCommand(opts),
	)
}

// newConfigInitCommand creates "config init", an interactive settings editor.
func newConfigInitCommand(opts *Options) *cobra.Command {
	var fromEnv bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or update the settings file",
		Long:  "Prompts for Jira, model and GitHub settings and saves them with owner-only permissions. With --from-env the current environment is saved without prompting.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())
			path, err := resolveConfigPath(opts)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			if fromEnv {
				if err := cfg.ApplyEnv(opts.Environ); err != nil {
					return err
				}
			} else {
				err := configForm(cfg).WithAccessible(envPresent(opts.Environ, "ACCESSIBLE")).Run()
				if errors.Is(err, huh.ErrUserAborted) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled, nothing was saved.")
					return nil
				}
				if err != nil {
					return fmt.Errorf("settings form: %w", err)
				}
			}

			trimConfig(cfg)
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			logger.Info("settings saved", "path", path)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved settings to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromEnv, "from-env", false, "Save settings from environment variables without prompting")
	return cmd
}

// configForm edits cfg in place. Provider-specific groups hide themselves.
func configForm(cfg *config.Config) *huh.Form {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.ProviderGeminiCLI
	}
	provider := &cfg.LLM.Provider
	hosted := func() bool {
		switch *provider {
		case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGemini:
			return true
		}
		return false
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Jira server").
				Description("Base URL of your Jira instance (leave empty to skip Jira)").
				Placeholder("https://example.atlassian.net").
				Value(&cfg.Jira.Server).
				Validate(validateServerURL),
			huh.NewInput().
				Title("Jira username").
				Description("Account email; leave empty to send the token as a bearer token").
				Value(&cfg.Jira.Username),
			huh.NewInput().
				Title("Jira API token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Jira.APIToken),
			huh.NewInput().
				Title("Default project key").
				Description("Used when a suggested ticket names no project").
				Placeholder("PROJ").
				Value(&cfg.Jira.Project),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model provider").
				Options(huh.NewOptions(llm.Providers...)...).
				Value(provider),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default").
				Value(&cfg.LLM.Model),
		).WithHideFunc(func() bool { return *provider == llm.ProviderCustomCLI }),

		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.LLM.APIKey),
			huh.NewInput().
				Title("Base URL").
				Description("Optional endpoint override").
				Value(&cfg.LLM.BaseURL).
				Validate(validateServerURL),
		).WithHideFunc(func() bool { return !hosted() }),

		huh.NewGroup(
			huh.NewInput().
				Title("Command").
				Description("Shell command reading the prompt; {prompt} is replaced by the quoted prompt").
				Placeholder("ollama run llama3 {prompt}").
				Value(&cfg.LLM.Command).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("command is required for %s", llm.ProviderCustomCLI)
					}
					return nil
				}),
		).WithHideFunc(func() bool { return *provider != llm.ProviderCustomCLI }),

		huh.NewGroup(
			huh.NewInput().
				Title("GitHub owner").
				Description("Leave empty to read it from the origin remote").
				Value(&cfg.GitHub.Owner),
			huh.NewInput().
				Title("GitHub repository").
				Value(&cfg.GitHub.Repo),
			huh.NewInput().
				Title("GitHub token").
				Description("Leave empty to use GH_TOKEN, GITHUB_TOKEN or gh auth").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.GitHub.Token),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateServerURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter a full http(s) URL")
	}
	return nil
}

func trimConfig(cfg *config.Config) {
	for _, p := range []*string{
		&cfg.Jira.Server, &cfg.Jira.Username, &cfg.Jira.APIToken, &cfg.Jira.Project,
		&cfg.GitHub.Owner, &cfg.GitHub.Repo, &cfg.GitHub.Token,
		&cfg.LLM.Provider, &cfg.LLM.Model, &cfg.LLM.APIKey, &cfg.LLM.BaseURL, &cfg.LLM.Command,
	} {
		*p = strings.TrimSpace(*p)
	}
	cfg.Jira.Server = strings.TrimRight(cfg.Jira.Server, "/")
}

// newConfigShowCommand prints the effective settings with secrets masked.
func newConfigShowCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(opts)
			if err != nil {
				return err
			}
			cfg, err := config.LoadWithEnv(path, opts.Environ)
			if err != nil {
				return err
			}
			raw, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(raw))
			return err
		},
	}
}

// newConfigPathCommand prints where settings are read from.
func newConfigPathCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}
