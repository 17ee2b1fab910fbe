package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/config"
	"github.com/knightmare-26/jira-cli/internal/githubapi"
	"github.com/knightmare-26/jira-cli/internal/jira"
	"github.com/knightmare-26/jira-cli/internal/llm"
	"github.com/knightmare-26/jira-cli/internal/localgit"
	"github.com/knightmare-26/jira-cli/internal/pipeline"
	"github.com/knightmare-26/jira-cli/internal/policy"
	"github.com/knightmare-26/jira-cli/internal/review"
	"github.com/knightmare-26/jira-cli/internal/ui"
)

// app holds everything a suggest or review run needs after settings are resolved.
type app struct {
	logger     *slog.Logger
	cfg        *config.Config
	policy     *policy.Policy
	policyPath string
	console    *ui.Console
	prompter   review.Prompter
	jira       *jira.Client // nil when Jira is not configured
}

// loadApp reads settings and policy for cmd. Missing settings are not an error; the
// affected features degrade instead.
func loadApp(cmd *cobra.Command, opts *Options) (*app, error) {
	logger := LoggerFromContext(cmd.Context())

	cfgPath, err := resolveConfigPath(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithEnv(cfgPath, opts.Environ)
	if err != nil {
		return nil, err
	}
	logger.Debug("settings loaded", "path", cfgPath, "jira", cfg.JiraConfigured(), "provider", cfg.LLM.Provider)

	policyPath := resolvePolicyPath(opts, cfg)
	a := &app{
		logger:     logger,
		cfg:        cfg,
		policy:     policy.Load(policyPath, logger),
		policyPath: policyPath,
		console:    ui.NewConsole(cmd.OutOrStdout(), ui.AnimationsEnabled(opts.NoAnimation, opts.CI)),
		prompter:   opts.prompter,
	}
	if a.prompter == nil {
		a.prompter = review.NewFormPrompter(opts.Environ)
	}
	if cfg.JiraConfigured() {
		a.jira = jira.NewClient(cfg.Jira.Server, cfg.Jira.Username, cfg.Jira.APIToken)
	} else {
		logger.Debug("jira not configured")
	}
	return a, nil
}

func resolveConfigPath(opts *Options) (string, error) {
	if p := strings.TrimSpace(opts.ConfigPath); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// resolvePolicyPath prefers the flag, then settings (which include JIRA_AI_POLICY), then
// policy.yaml in the working directory.
func resolvePolicyPath(opts *Options, cfg *config.Config) string {
	if p := strings.TrimSpace(opts.PolicyPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(cfg.PolicyPath); p != "" {
		return p
	}
	return policy.DefaultPath
}

// contextProvider chains the GitHub API and the local clone. The GitHub repository comes
// from settings, or from the origin remote of the working directory.
func (a *app) contextProvider(ctx context.Context, dir string) pipeline.ContextProvider {
	var chain pipeline.Chain

	repo, repoErr := localgit.Open(dir)
	if repoErr != nil {
		a.logger.Debug("no local git repository", "dir", dir, "error", repoErr)
	}

	owner, name := a.cfg.GitHub.Owner, a.cfg.GitHub.Repo
	if (owner == "" || name == "") && repoErr == nil {
		if o, n, err := repo.GitHubRemote("origin"); err == nil {
			owner, name = o, n
		} else {
			a.logger.Debug("origin is not a GitHub remote", "error", err)
		}
	}
	if owner != "" && name != "" {
		client, err := githubapi.NewClient(a.logger, githubapi.ResolveToken(ctx, a.cfg.GitHub.Token), owner, name)
		if err != nil {
			a.logger.Warn("github client unavailable", "error", err)
		} else {
			chain = append(chain, client)
		}
	}
	if repoErr == nil {
		chain = append(chain, repo)
	}
	return chain
}

func (a *app) pipeline(ctx context.Context, renderer pipeline.PromptRenderer) *pipeline.Pipeline {
	p := &pipeline.Pipeline{
		Context:   a.contextProvider(ctx, "."),
		Prompt:    renderer,
		Generator: llm.NewGenerator(llm.NewBackend(a.cfg.LLM, a.logger), a.logger),
		Policy:    a.policy,
		Reporter:  a.console,
		Logger:    a.logger,
	}
	if a.jira != nil {
		p.Issues = a.jira
	}
	return p
}

func (a *app) executor() *review.Executor {
	ex := &review.Executor{
		Policy:         a.policy,
		DefaultProject: a.cfg.Jira.Project,
		Logger:         a.logger,
	}
	if a.jira != nil {
		ex.Store = a.jira
	}
	return ex
}

// reviewActions runs the approval loop over admitted actions and prints the totals.
func (a *app) reviewActions(ctx context.Context, actions []action.Action) []review.Outcome {
	if len(actions) == 0 {
		a.console.Notice("No actions left to review after policy filtering.")
		return nil
	}
	if a.jira == nil {
		a.console.Notice("Jira is not configured; approved actions will fail. Run `jira-ai config init`.")
	}
	reviewer := &review.Reviewer{
		Prompter:  a.prompter,
		Presenter: a.console,
		Executor:  a.executor(),
		Admission: a.policy,
		Logger:    a.logger,
	}
	outcomes := reviewer.Review(ctx, actions)
	a.console.Summary(outcomes)
	return outcomes
}

func writeDocument(w io.Writer, actions []action.Action) error {
	data, err := action.EncodeDocument(actions)
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
