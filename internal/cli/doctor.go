package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/knightmare-26/jira-cli/internal/githubapi"
	"github.com/knightmare-26/jira-cli/internal/llm"
	"github.com/knightmare-26/jira-cli/internal/localgit"
)

// newDoctorCommand creates the "doctor" subcommand that runs preflight checks.
func newDoctorCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check settings, policy, model backend and service access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if fatal := a.runDoctorChecks(ctx, opts); fatal > 0 {
				return fmt.Errorf("doctor found %d fatal issue(s); see output for details", fatal)
			}
			a.logger.Info("doctor checks completed successfully")
			return nil
		},
	}
	return cmd
}

// runDoctorChecks prints one line per check and returns the number of fatal problems.
// Missing Jira or GitHub access only degrades features, so it is reported as a warning.
func (a *app) runDoctorChecks(ctx context.Context, opts *Options) int {
	fatal := 0

	cfgPath, _ := resolveConfigPath(opts)
	if _, err := os.Stat(cfgPath); err != nil {
		a.console.Notice(fmt.Sprintf("No settings file at %s; using environment only", cfgPath))
	} else {
		a.console.Succeed("Settings file " + cfgPath)
	}

	if len(a.policy.AllowedActions) == 0 {
		a.console.Fail(fmt.Sprintf("Policy %s allows no actions; every suggestion will be rejected", a.policyPath))
		fatal++
	} else {
		a.console.Succeed(fmt.Sprintf("Policy %s allows %d action type(s)", a.policyPath, len(a.policy.AllowedActions)))
	}

	if err := llm.Check(a.cfg.LLM); err != nil {
		a.console.Fail("Model backend: " + err.Error())
		fatal++
	} else {
		a.console.Succeed("Model backend " + orDefault(a.cfg.LLM.Provider, llm.ProviderGeminiCLI))
	}

	if a.jira == nil {
		a.console.Notice("Jira is not configured; similar issue search and execution are disabled")
	} else if who, err := a.jira.Myself(ctx); err != nil {
		a.console.Fail("Jira: " + err.Error())
		fatal++
	} else {
		a.console.Succeed(fmt.Sprintf("Jira %s as %s", a.cfg.Jira.Server, who))
	}

	owner, name := a.cfg.GitHub.Owner, a.cfg.GitHub.Repo
	repo, repoErr := localgit.Open(".")
	if repoErr != nil {
		a.console.Notice("Not inside a git repository; commit and branch lookups need the GitHub API")
	} else {
		a.console.Succeed("Local git repository found")
		if owner == "" || name == "" {
			owner, name, _ = repo.GitHubRemote("origin")
		}
	}
	switch {
	case owner == "" || name == "":
		a.console.Notice("GitHub repository unknown; set github.owner and github.repo or add a GitHub origin remote")
	case githubapi.ResolveToken(ctx, a.cfg.GitHub.Token) == "":
		a.console.Notice(fmt.Sprintf("GitHub %s/%s without a token; private repositories and rate limits will fail", owner, name))
	default:
		a.console.Succeed(fmt.Sprintf("GitHub %s/%s with token", owner, name))
	}

	return fatal
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
