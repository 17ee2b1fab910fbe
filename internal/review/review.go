package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/pipeline"
)

// Prompter asks the human questions. Implementations report an aborted prompt as an error;
// the reviewer treats that as "no".
type Prompter interface {
	Confirm(question string) (bool, error)
	Edit(title, current string) (string, error)
}

// Presenter shows actions and results.
type Presenter interface {
	ShowAction(index, total int, a action.Action)
	Notice(msg string)
	ShowOutcome(o Outcome)
}

// Reviewer runs the approval loop.
type Reviewer struct {
	Prompter  Prompter
	Presenter Presenter
	Executor  *Executor
	// Admission is re-applied to edited actions so an edit cannot bypass the filter.
	Admission pipeline.Policy
	Logger    *slog.Logger
}

// Review handles every action in order and returns one Outcome per action. It always
// completes; no individual failure stops the loop.
func (r *Reviewer) Review(ctx context.Context, actions []action.Action) []Outcome {
	outcomes := make([]Outcome, 0, len(actions))
	for i, a := range actions {
		r.Presenter.ShowAction(i+1, len(actions), a)
		a = r.maybeEdit(i+1, len(actions), a)
		o := r.decide(ctx, a)
		r.Presenter.ShowOutcome(o)
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (r *Reviewer) maybeEdit(index, total int, a action.Action) action.Action {
	if !r.ask("Do you want to edit this action?") {
		return a
	}
	edited, err := r.Prompter.Edit("Edit the action JSON", action.Pretty(a))
	if err != nil {
		r.logger().Warn("edit aborted, keeping original action", "error", err)
		r.Presenter.Notice("Edit aborted. Using the original action.")
		return a
	}
	replacement, err := action.ParseOne([]byte(edited))
	if err != nil {
		r.logger().Warn("invalid edit, keeping original action", "error", err)
		r.Presenter.Notice(fmt.Sprintf("Invalid action (%v). Using the original action.", err))
		return a
	}
	if replacement.Kind() != a.Kind() {
		r.logger().Warn("edit changed the action type, keeping original action", "from", a.Kind(), "to", replacement.Kind())
		r.Presenter.Notice(fmt.Sprintf("Editing cannot change the action type from %s to %s. Using the original action.", a.Kind(), replacement.Kind()))
		return a
	}
	if r.Admission != nil {
		if _, rejected := pipeline.Filter([]action.Action{replacement}, r.Admission); len(rejected) > 0 {
			r.logger().Warn("edited action rejected by policy, keeping original action", "reason", rejected[0].Reason)
			r.Presenter.Notice(fmt.Sprintf("Edited action rejected by policy (%s). Using the original action.", rejected[0].Reason))
			return a
		}
	}
	r.Presenter.Notice("Action updated after editing.")
	r.Presenter.ShowAction(index, total, replacement)
	return replacement
}

func (r *Reviewer) decide(ctx context.Context, a action.Action) Outcome {
	if ex, ok := a.(action.UseExistingTicket); ok {
		if !r.ask(fmt.Sprintf("Acknowledge suggestion to use existing ticket %s?", ex.IssueKey)) {
			return Outcome{Action: a, Status: Declined, Message: "Suggestion to use existing ticket rejected"}
		}
		return r.Executor.Execute(ctx, a)
	}
	if !r.ask("Approve this action for execution?") {
		return Outcome{Action: a, Status: Declined, Message: "Action rejected by user"}
	}
	return r.Executor.Execute(ctx, a)
}

func (r *Reviewer) ask(question string) bool {
	ok, err := r.Prompter.Confirm(question)
	if err != nil {
		r.logger().Debug("prompt aborted, treating as no", "question", question, "error", err)
		return false
	}
	return ok
}

func (r *Reviewer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}
