package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/ghoutput"
	"github.com/knightmare-26/jira-cli/internal/pipeline"
	"github.com/knightmare-26/jira-cli/internal/prompt"
	"github.com/knightmare-26/jira-cli/internal/ui"
)

// newSuggestCommand creates "suggest", which turns a code change into reviewed Jira actions.
func newSuggestCommand(opts *Options) *cobra.Command {
	var (
		pr       int
		commit   string
		branch   string
		output   string
		noReview bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest Jira actions for a pull request, commit or branch",
		Example: "  jira-ai suggest --pr 42\n" +
			"  jira-ai suggest --commit 3f2a9c1 --no-review\n" +
			"  jira-ai suggest --branch feature/login --output actions.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Environment references only apply when no flag names the change.
			if !cmd.Flags().Changed("pr") && !cmd.Flags().Changed("commit") && !cmd.Flags().Changed("branch") {
				envVars := suggestEnv{}
				if err := parseEnv(&envVars, opts.Environ); err != nil {
					return err
				}
				switch {
				case envPresent(opts.Environ, "JIRA_AI_PR_NUMBER"):
					pr = envVars.PR
				case envPresent(opts.Environ, "JIRA_AI_COMMIT"):
					commit = envVars.Commit
				case envPresent(opts.Environ, "JIRA_AI_BRANCH"):
					branch = envVars.Branch
				}
			}
			sel := pipeline.Selector{PullRequest: pr, Commit: strings.TrimSpace(commit), Branch: strings.TrimSpace(branch)}
			if err := sel.Validate(); err != nil {
				return fmt.Errorf("use one of --pr, --commit or --branch: %w", err)
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			if noReview && output == "" {
				// stdout carries the document; progress goes to stderr.
				a.console = ui.NewConsole(cmd.ErrOrStderr(), false)
			}
			renderer, err := prompt.NewRenderer(a.cfg.LLM.PromptTemplate)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a.console.Banner("Suggesting Jira actions for " + sel.String())

			res, err := a.pipeline(ctx, renderer).Suggest(ctx, sel)
			if err != nil {
				return err
			}
			if err := publishOutputs(opts.Environ[ghoutput.EnvVar], res); err != nil {
				a.logger.Warn("failed to write step outputs", "error", err)
			}
			switch res.Status {
			case pipeline.StatusContextUnavailable:
				a.console.Notice("Could not get context for " + sel.String() + ". Nothing to suggest.")
				return nil
			case pipeline.StatusNoSuggestions:
				a.console.Notice("No suggestions were generated.")
				return nil
			}
			a.console.Candidates(res.Candidates)
			a.console.Rejections(res.Rejections)

			if output != "" {
				if err := saveDocument(output, res.Actions); err != nil {
					return err
				}
				a.console.Succeed(fmt.Sprintf("Wrote %d action(s) to %s", len(res.Actions), output))
			}
			if noReview {
				if output == "" {
					return writeDocument(cmd.OutOrStdout(), res.Actions)
				}
				return nil
			}
			a.reviewActions(ctx, res.Actions)
			return nil
		},
	}

	cmd.Flags().IntVar(&pr, "pr", 0, "Pull request number (env JIRA_AI_PR_NUMBER)")
	cmd.Flags().StringVar(&commit, "commit", "", "Commit SHA (env JIRA_AI_COMMIT)")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch name (env JIRA_AI_BRANCH)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the admitted actions as JSON to this file")
	cmd.Flags().BoolVar(&noReview, "no-review", false, "Print or save the admitted actions without reviewing them")
	cmd.MarkFlagsMutuallyExclusive("pr", "commit", "branch")

	return cmd
}

// publishOutputs exposes the run result to later GitHub Actions steps.
func publishOutputs(path string, res *pipeline.Result) error {
	if path == "" {
		return nil
	}
	data, err := action.EncodeDocument(res.Actions)
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	return ghoutput.Write(path, map[string]string{
		"status":         res.Status.String(),
		"actions_count":  strconv.Itoa(len(res.Actions)),
		"rejected_count": strconv.Itoa(len(res.Rejections)),
		"actions":        string(data),
	})
}

func saveDocument(path string, actions []action.Action) error {
	data, err := action.EncodeDocument(actions)
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
