// Package pipeline turns a code-change reference into a policy-filtered list of proposed
// Jira actions: fetch context, find similar issues, ask the model, validate, filter.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

// MaxCandidates caps the similar-issue search.
const MaxCandidates = 5

// Status is the terminal state of a suggestion run.
type Status int

const (
	// StatusReady means suggestions were produced and filtered; Actions may still be empty.
	StatusReady Status = iota
	// StatusContextUnavailable means the code change could not be fetched.
	StatusContextUnavailable
	// StatusNoSuggestions means the model produced nothing usable.
	StatusNoSuggestions
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusContextUnavailable:
		return "context unavailable"
	case StatusNoSuggestions:
		return "no suggestions"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ContextProvider fetches code-change context.
type ContextProvider interface {
	PullRequest(ctx context.Context, number int) (*promptctx.PullRequest, error)
	Commit(ctx context.Context, sha string) (*promptctx.Commit, error)
	Branch(ctx context.Context, name string) (*promptctx.Branch, error)
}

// IssueSearcher finds existing issues resembling a text.
type IssueSearcher interface {
	SearchSimilar(ctx context.Context, text string, lookbackDays, limit int) ([]promptctx.CandidateIssue, error)
}

// Generator produces a raw suggestion document, or nil.
type Generator interface {
	Generate(ctx context.Context, prompt string) json.RawMessage
}

// PromptRenderer builds the model prompt.
type PromptRenderer interface {
	Render(ctx *promptctx.Context, candidates []promptctx.CandidateIssue) (string, error)
}

// SuggestPolicy is the policy surface used by a suggestion run.
type SuggestPolicy interface {
	Policy
	LookbackDays() int
}

// Reporter receives progress notices for the user.
type Reporter interface {
	Start(step string)
	Succeed(msg string)
	Fail(msg string)
	Skip(msg string)
}

// Selector names the code change. Exactly one field must be set.
type Selector struct {
	PullRequest int
	Commit      string
	Branch      string
}

// ErrInvalidSelector is returned when zero or several references are given.
var ErrInvalidSelector = errors.New("exactly one of pull request, commit or branch is required")

// Validate checks that exactly one reference is set.
func (s Selector) Validate() error {
	n := 0
	if s.PullRequest > 0 {
		n++
	}
	if strings.TrimSpace(s.Commit) != "" {
		n++
	}
	if strings.TrimSpace(s.Branch) != "" {
		n++
	}
	if n != 1 {
		return ErrInvalidSelector
	}
	return nil
}

func (s Selector) String() string {
	switch {
	case s.PullRequest > 0:
		return fmt.Sprintf("pull request #%d", s.PullRequest)
	case s.Commit != "":
		return "commit " + s.Commit
	default:
		return "branch " + s.Branch
	}
}

// Result is the outcome of a suggestion run.
type Result struct {
	Status     Status
	Context    *promptctx.Context
	Candidates []promptctx.CandidateIssue
	// Actions are the suggestions that passed the policy filter, in model order.
	Actions    []action.Action
	Rejections []Rejection
}

// Pipeline wires the collaborators of a suggestion run.
type Pipeline struct {
	Context   ContextProvider
	Issues    IssueSearcher // nil when the ticket store is not configured
	Prompt    PromptRenderer
	Generator Generator
	Policy    SuggestPolicy
	Reporter  Reporter
	Logger    *slog.Logger
}

// Suggest runs the pipeline for one code change. Collaborator failures end the run with a
// non-ready Status; only an invalid selector is returned as an error.
func (p *Pipeline) Suggest(ctx context.Context, sel Selector) (*Result, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	logger := p.logger()
	rep := p.reporter()

	rep.Start("Fetching " + sel.String())
	change, err := p.fetchContext(ctx, sel)
	if err != nil || change.Kind() == "" {
		logger.Warn("context unavailable", "ref", sel.String(), "error", err)
		rep.Fail("Could not fetch " + sel.String())
		return &Result{Status: StatusContextUnavailable}, nil
	}
	rep.Succeed("Fetched " + sel.String())
	res := &Result{Status: StatusNoSuggestions, Context: change}

	res.Candidates = p.searchCandidates(ctx, change)

	rep.Start("Asking the model for suggestions")
	prompt, err := p.Prompt.Render(change, res.Candidates)
	if err != nil {
		logger.Error("failed to render prompt", "error", err)
		rep.Fail("Could not build the prompt")
		return res, nil
	}
	doc := p.Generator.Generate(ctx, prompt)
	if doc == nil {
		rep.Fail("The model did not provide any suggestions")
		return res, nil
	}
	actions, err := action.DecodeDocument(doc)
	if err != nil {
		logger.Warn("discarding model reply", "error", err)
		rep.Fail("The model reply was not a valid suggestion document")
		return res, nil
	}
	if len(actions) == 0 {
		rep.Fail("The model did not provide any suggestions")
		return res, nil
	}
	rep.Succeed(fmt.Sprintf("The model proposed %d action(s)", len(actions)))

	res.Actions, res.Rejections = Filter(actions, p.Policy)
	for _, r := range res.Rejections {
		logger.Info("policy rejected action", "type", r.Action.Kind(), "reason", r.Reason)
	}
	res.Status = StatusReady
	return res, nil
}

func (p *Pipeline) fetchContext(ctx context.Context, sel Selector) (*promptctx.Context, error) {
	if p.Context == nil {
		return nil, errors.New("no context provider configured")
	}
	switch {
	case sel.PullRequest > 0:
		pr, err := p.Context.PullRequest(ctx, sel.PullRequest)
		if err != nil || pr == nil {
			return nil, err
		}
		return promptctx.ForPullRequest(*pr), nil
	case strings.TrimSpace(sel.Commit) != "":
		c, err := p.Context.Commit(ctx, strings.TrimSpace(sel.Commit))
		if err != nil || c == nil {
			return nil, err
		}
		return promptctx.ForCommit(*c), nil
	default:
		b, err := p.Context.Branch(ctx, strings.TrimSpace(sel.Branch))
		if err != nil || b == nil {
			return nil, err
		}
		return promptctx.ForBranch(*b), nil
	}
}

func (p *Pipeline) searchCandidates(ctx context.Context, change *promptctx.Context) []promptctx.CandidateIssue {
	rep := p.reporter()
	if p.Issues == nil {
		rep.Skip("Jira is not configured, skipping similar issue search")
		return nil
	}
	rep.Start("Searching Jira for similar issues")
	found, err := p.Issues.SearchSimilar(ctx, change.SearchText(), p.Policy.LookbackDays(), MaxCandidates)
	if err != nil {
		p.logger().Warn("similar issue search failed", "error", err)
		rep.Fail("Similar issue search failed, continuing without candidates")
		return nil
	}
	if len(found) > MaxCandidates {
		found = found[:MaxCandidates]
	}
	rep.Succeed(fmt.Sprintf("Found %d similar issue(s)", len(found)))
	return found
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Pipeline) reporter() Reporter {
	if p.Reporter == nil {
		return nopReporter{}
	}
	return p.Reporter
}

type nopReporter struct{}

func (nopReporter) Start(string)   {}
func (nopReporter) Succeed(string) {}
func (nopReporter) Fail(string)    {}
func (nopReporter) Skip(string)    {}
