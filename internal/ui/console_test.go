package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/pipeline"
	"github.com/knightmare-26/jira-cli/internal/policy"
	"github.com/knightmare-26/jira-cli/internal/review"
)

func TestConsoleQuietWithoutAnimation(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, false)

	c.Banner("subtitle")
	c.Start("Fetching pull request #1")
	assert.Empty(t, out.String())

	c.Succeed("Fetched pull request #1")
	c.Fail("Search failed")
	assert.Contains(t, out.String(), IconPass+" Fetched pull request #1")
	assert.Contains(t, out.String(), IconFail+" Search failed")
}

func TestConsoleStartWithAnimation(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, true)
	c.Start("Searching")
	assert.Contains(t, out.String(), "Searching...")
}

func TestShowActionAndOutcome(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, false)

	a := action.TransitionTicket{IssueKey: "PROJ-1", TransitionName: "Done"}
	c.ShowAction(1, 2, a)
	c.ShowOutcome(review.Outcome{Action: a, Status: review.Denied, Message: "not allowed"})
	c.Rejections([]pipeline.Rejection{{Action: action.Unknown{Type: "x"}, Reason: pipeline.ReasonNotAllowed}})

	text := out.String()
	assert.Contains(t, text, `Action 1 of 2: Move PROJ-1 to "Done"`)
	assert.Contains(t, text, `"transition_name": "Done"`)
	assert.Contains(t, text, "not allowed")
	assert.Contains(t, text, pipeline.ReasonNotAllowed)
}

func TestSummaryAndPolicy(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, false)
	c.Summary([]review.Outcome{
		{Status: review.Succeeded},
		{Status: review.Failed, Message: errors.New("x").Error()},
		{Status: review.Declined},
		{Status: review.Declined},
	})
	assert.Contains(t, out.String(), "1 succeeded")
	assert.Contains(t, out.String(), "2 declined")

	out.Reset()
	p, err := policy.Parse([]byte("allowed_actions: [add_comment]\nallowed_transitions: {B: [C], A: [B]}\n"))
	require.NoError(t, err)
	c.Policy("policy.yaml", p)
	text := out.String()
	assert.Contains(t, text, "add_comment")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("A -> B")), bytes.Index(out.Bytes(), []byte("B -> C")))
	assert.Contains(t, text, "60 days")
}

func TestAnimationsDisabled(t *testing.T) {
	assert.False(t, AnimationsEnabled(true, ""))
	assert.False(t, AnimationsEnabled(false, "true"))
	assert.False(t, AnimationsEnabled(false, "1"))
}
