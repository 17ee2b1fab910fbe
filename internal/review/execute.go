// Package review walks a human through proposed actions one by one and executes the
// approved ones against Jira, re-checking workflow policy against live issue state.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/jira"
)

// Status classifies an Outcome.
type Status int

const (
	// Succeeded means the action was carried out or acknowledged.
	Succeeded Status = iota
	// Failed means the action was invalid or Jira refused it.
	Failed
	// Denied means the workflow policy refused the action.
	Denied
	// Declined means the human rejected the action.
	Declined
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Denied:
		return "denied by policy"
	case Declined:
		return "declined"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of handling one action.
type Outcome struct {
	Action  action.Action
	Status  Status
	Message string
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool {
	return o.Status == Succeeded
}

// TicketStore is the mutating Jira surface used by the executor.
type TicketStore interface {
	GetStatus(ctx context.Context, key string) (string, error)
	CreateIssue(ctx context.Context, in jira.IssueInput) (string, error)
	TransitionIssue(ctx context.Context, key, transition string) error
	AddComment(ctx context.Context, key, body string) error
}

// WorkflowPolicy is the policy surface consulted at execution time.
type WorkflowPolicy interface {
	IsTransitionAllowed(current, target string) bool
	IsStateBlocked(state string) bool
}

type browser interface {
	BrowseURL(key string) string
}

// Executor carries out single actions.
type Executor struct {
	// Store is nil when Jira is not configured; every mutating action then fails.
	Store  TicketStore
	Policy WorkflowPolicy
	// DefaultProject fills create_ticket actions that name no project.
	DefaultProject string
	Logger         *slog.Logger
}

// Execute performs a. It never returns an error; every failure is an Outcome.
func (e *Executor) Execute(ctx context.Context, a action.Action) Outcome {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := e.execute(ctx, a)
	out.Action = a
	logger.Info("action handled", "type", kindOf(a), "status", out.Status.String(), "message", out.Message)
	return out
}

func (e *Executor) execute(ctx context.Context, a action.Action) Outcome {
	switch v := a.(type) {
	case action.UseExistingTicket:
		return Outcome{Status: Succeeded, Message: fmt.Sprintf("Acknowledged: use existing ticket %s", v.IssueKey)}
	case action.CreateTicket:
		return e.create(ctx, v)
	case action.TransitionTicket:
		return e.transition(ctx, v)
	case action.AddComment:
		return e.comment(ctx, v)
	default:
		return failed("unknown action type %q", kindOf(a))
	}
}

func (e *Executor) create(ctx context.Context, a action.CreateTicket) Outcome {
	project := strings.TrimSpace(a.Project)
	if project == "" {
		project = strings.TrimSpace(e.DefaultProject)
	}
	switch {
	case strings.TrimSpace(a.Summary) == "":
		return failed("create_ticket requires a summary")
	case strings.TrimSpace(a.Description) == "":
		return failed("create_ticket requires a description")
	case project == "":
		return failed("create_ticket requires a project and no default project is configured")
	case e.Store == nil:
		return failed("Jira is not configured")
	}
	issueType := a.IssueType
	if strings.TrimSpace(issueType) == "" {
		issueType = action.DefaultIssueType
	}

	key, err := e.Store.CreateIssue(ctx, jira.IssueInput{
		Project:     project,
		Summary:     a.Summary,
		Description: a.Description,
		IssueType:   issueType,
		Labels:      a.Labels,
	})
	if err != nil {
		return failed("failed to create ticket: %v", err)
	}
	if key == "" {
		return failed("Jira did not return a key for the new ticket")
	}
	return Outcome{Status: Succeeded, Message: "Created " + e.describeKey(key)}
}

func (e *Executor) transition(ctx context.Context, a action.TransitionTicket) Outcome {
	key, target := strings.TrimSpace(a.IssueKey), strings.TrimSpace(a.TransitionName)
	if key == "" || target == "" {
		return failed("transition_ticket requires issue_key and transition_name")
	}
	if e.Store == nil {
		return failed("Jira is not configured")
	}

	current, err := e.Store.GetStatus(ctx, key)
	if err != nil {
		return failed("could not read the status of %s: %v", key, err)
	}
	if current == "" {
		return failed("%s has no status", key)
	}
	if e.Policy == nil {
		return denied("no policy loaded, %s cannot move from %q to %q", key, current, target)
	}
	if e.Policy.IsStateBlocked(current) {
		return denied("%s is in blocked state %q", key, current)
	}
	if e.Policy.IsStateBlocked(target) {
		return denied("target state %q is blocked", target)
	}
	if !e.Policy.IsTransitionAllowed(current, target) {
		return denied("transition of %s from %q to %q is not allowed by policy", key, current, target)
	}

	if err := e.Store.TransitionIssue(ctx, key, target); err != nil {
		return failed("failed to transition %s: %v", key, err)
	}
	return Outcome{Status: Succeeded, Message: fmt.Sprintf("Moved %s from %q to %q", e.describeKey(key), current, target)}
}

func (e *Executor) comment(ctx context.Context, a action.AddComment) Outcome {
	key := strings.TrimSpace(a.IssueKey)
	if key == "" || strings.TrimSpace(a.CommentBody) == "" {
		return failed("add_comment requires issue_key and comment_body")
	}
	if e.Store == nil {
		return failed("Jira is not configured")
	}
	if err := e.Store.AddComment(ctx, key, a.CommentBody); err != nil {
		return failed("failed to comment on %s: %v", key, err)
	}
	return Outcome{Status: Succeeded, Message: "Commented on " + e.describeKey(key)}
}

func (e *Executor) describeKey(key string) string {
	if b, ok := e.Store.(browser); ok {
		return fmt.Sprintf("%s (%s)", key, b.BrowseURL(key))
	}
	return key
}

func failed(format string, args ...any) Outcome {
	return Outcome{Status: Failed, Message: fmt.Sprintf(format, args...)}
}

func denied(format string, args ...any) Outcome {
	return Outcome{Status: Denied, Message: fmt.Sprintf(format, args...)}
}

func kindOf(a action.Action) string {
	if a == nil {
		return ""
	}
	return a.Kind()
}
