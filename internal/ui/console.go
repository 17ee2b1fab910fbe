package ui

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/pipeline"
	"github.com/knightmare-26/jira-cli/internal/policy"
	"github.com/knightmare-26/jira-cli/internal/promptctx"
	"github.com/knightmare-26/jira-cli/internal/review"
)

const banner = `
   _ _                        _
  (_|_)_ __ __ _        __ _ (_)
  | | | '__/ _' |_____ / _' || |
  | | | | | (_| |_____| (_| || |
 _/ |_|_|  \__,_|      \__,_||_|
|__/`

// Console writes human-facing output. It implements pipeline.Reporter and review.Presenter.
type Console struct {
	out     io.Writer
	animate bool
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer, animate bool) *Console {
	return &Console{out: out, animate: animate}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Banner prints the product banner when animations are enabled.
func (c *Console) Banner(subtitle string) {
	if !c.animate {
		return
	}
	c.printf("%s\n%s\n\n", AccentStyle.Render(banner), MutedStyle.Render("  "+subtitle))
}

// Start announces a step. Only shown when animations are enabled.
func (c *Console) Start(step string) {
	if c.animate {
		c.printf("%s %s\n", MutedStyle.Render(IconStep), MutedStyle.Render(step+"..."))
	}
}

// Succeed reports a completed step.
func (c *Console) Succeed(msg string) {
	c.printf("%s %s\n", PassStyle.Render(IconPass), msg)
}

// Fail reports a failed step.
func (c *Console) Fail(msg string) {
	c.printf("%s %s\n", FailStyle.Render(IconFail), msg)
}

// Skip reports a skipped step.
func (c *Console) Skip(msg string) {
	c.printf("%s %s\n", MutedStyle.Render(IconSkip), MutedStyle.Render(msg))
}

// Notice prints a warning-level message.
func (c *Console) Notice(msg string) {
	c.printf("%s %s\n", WarnStyle.Render(IconWarn), msg)
}

// ShowAction prints an action header and its JSON.
func (c *Console) ShowAction(index, total int, a action.Action) {
	c.printf("\n%s\n", HeaderStyle.Render(fmt.Sprintf("Action %d of %d: %s", index, total, action.Summary(a))))
	c.printf("%s\n", BoxStyle.Render(action.Pretty(a)))
}

// ShowOutcome prints the result of one action.
func (c *Console) ShowOutcome(o review.Outcome) {
	switch o.Status {
	case review.Succeeded:
		c.printf("%s %s\n", PassStyle.Render(IconPass), o.Message)
	case review.Denied:
		c.printf("%s %s\n", WarnStyle.Render(IconWarn), WarnStyle.Render("Policy: ")+o.Message)
	case review.Declined:
		c.printf("%s %s\n", MutedStyle.Render(IconSkip), MutedStyle.Render(o.Message))
	default:
		c.printf("%s %s\n", FailStyle.Render(IconFail), o.Message)
	}
}

// Rejections lists actions dropped by the policy filter.
func (c *Console) Rejections(rejected []pipeline.Rejection) {
	for _, r := range rejected {
		c.printf("%s %s %s\n", WarnStyle.Render(IconWarn), WarnStyle.Render("Policy rejected:"), fmt.Sprintf("%s (%s)", action.Summary(r.Action), r.Reason))
	}
}

// Candidates lists the similar issues found.
func (c *Console) Candidates(found []promptctx.CandidateIssue) {
	for _, f := range found {
		c.printf("  %s %s\n", AccentStyle.Render(f.Key), f.Summary)
	}
}

// Summary prints totals after a review.
func (c *Console) Summary(outcomes []review.Outcome) {
	counts := review.Summarize(outcomes)
	parts := []string{
		PassStyle.Render(fmt.Sprintf("%d succeeded", counts[review.Succeeded])),
		FailStyle.Render(fmt.Sprintf("%d failed", counts[review.Failed])),
		WarnStyle.Render(fmt.Sprintf("%d denied", counts[review.Denied])),
		MutedStyle.Render(fmt.Sprintf("%d declined", counts[review.Declined])),
	}
	c.printf("\n%s\n%s\n", MutedStyle.Render(separator), strings.Join(parts, MutedStyle.Render(" · ")))
}

// Policy prints the effective policy.
func (c *Console) Policy(path string, p *policy.Policy) {
	c.printf("%s %s\n", HeaderStyle.Render("Policy"), MutedStyle.Render(path))
	c.printf("  Allowed actions:  %s\n", orNone(strings.Join(p.AllowedActions, ", ")))
	if len(p.AllowedTransitions) == 0 {
		c.printf("  Transitions:      %s\n", orNone(""))
	} else {
		c.printf("  Transitions:\n")
		for _, from := range slices.Sorted(maps.Keys(p.AllowedTransitions)) {
			c.printf("    %s -> %s\n", from, orNone(strings.Join(p.AllowedTransitions[from], ", ")))
		}
	}
	c.printf("  Blocked states:   %s\n", orNone(strings.Join(p.BlockedStates, ", ")))
	c.printf("  Min similarity:   %g\n", p.SimilarityThreshold())
	c.printf("  Lookback:         %d days\n", p.LookbackDays())
}

func orNone(s string) string {
	if s == "" {
		return MutedStyle.Render("(none)")
	}
	return s
}
