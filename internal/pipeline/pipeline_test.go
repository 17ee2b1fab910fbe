package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/logging"
	"github.com/knightmare-26/jira-cli/internal/prompt"
	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

type fakeProvider struct {
	pr     *promptctx.PullRequest
	commit *promptctx.Commit
	branch *promptctx.Branch
	err    error
}

func (f *fakeProvider) PullRequest(context.Context, int) (*promptctx.PullRequest, error) {
	return f.pr, f.err
}

func (f *fakeProvider) Commit(context.Context, string) (*promptctx.Commit, error) {
	return f.commit, f.err
}

func (f *fakeProvider) Branch(context.Context, string) (*promptctx.Branch, error) {
	return f.branch, f.err
}

type fakeSearcher struct {
	found    []promptctx.CandidateIssue
	err      error
	text     string
	lookback int
	limit    int
}

func (f *fakeSearcher) SearchSimilar(_ context.Context, text string, lookbackDays, limit int) ([]promptctx.CandidateIssue, error) {
	f.text, f.lookback, f.limit = text, lookbackDays, limit
	return f.found, f.err
}

type fakeGenerator struct {
	doc    string
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, p string) json.RawMessage {
	f.prompt = p
	if f.doc == "" {
		return nil
	}
	return json.RawMessage(f.doc)
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) Start(s string)   { r.events = append(r.events, "start: "+s) }
func (r *recordingReporter) Succeed(s string) { r.events = append(r.events, "ok: "+s) }
func (r *recordingReporter) Fail(s string)    { r.events = append(r.events, "fail: "+s) }
func (r *recordingReporter) Skip(s string)    { r.events = append(r.events, "skip: "+s) }

const scenarioDoc = `{"actions": [
	{"type": "use_existing_ticket", "issue_key": "PROJ-1", "similarity": 0.9},
	{"type": "create_ticket", "summary": "New Ticket"}
]}`

func newPipeline(t *testing.T, policyDoc string, gen *fakeGenerator, search *fakeSearcher) (*Pipeline, *recordingReporter) {
	t.Helper()
	rep := &recordingReporter{}
	p := &Pipeline{
		Context:   &fakeProvider{pr: &promptctx.PullRequest{Number: 7, Title: "Fix login bug"}},
		Prompt:    prompt.MustBuiltin(),
		Generator: gen,
		Policy:    mustPolicy(t, policyDoc),
		Reporter:  rep,
		Logger:    logging.Discard(),
	}
	if search != nil {
		p.Issues = search
	}
	return p, rep
}

func TestScenarioAllSuggestionsAdmitted(t *testing.T) {
	search := &fakeSearcher{found: []promptctx.CandidateIssue{{Key: "PROJ-1", Summary: "Login fails"}}}
	gen := &fakeGenerator{doc: scenarioDoc}
	p, _ := newPipeline(t, "allowed_actions: [use_existing_ticket, create_ticket]\nsimilarity: {min_similarity: 0.7, lookback_days: 14}\n", gen, search)

	res, err := p.Suggest(context.Background(), Selector{PullRequest: 7})
	require.NoError(t, err)

	assert.Equal(t, StatusReady, res.Status)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, action.UseExistingTicket{IssueKey: "PROJ-1", Similarity: 0.9}, res.Actions[0])
	assert.Equal(t, action.CreateTicket{Summary: "New Ticket", IssueType: action.DefaultIssueType}, res.Actions[1])
	assert.Empty(t, res.Rejections)

	assert.Equal(t, "Fix login bug", search.text)
	assert.Equal(t, 14, search.lookback)
	assert.Equal(t, MaxCandidates, search.limit)
	assert.Contains(t, gen.prompt, `"key": "PROJ-1"`)
	assert.Contains(t, gen.prompt, `"title": "Fix login bug"`)
}

func TestScenarioLowSimilarityFiltered(t *testing.T) {
	search := &fakeSearcher{found: []promptctx.CandidateIssue{{Key: "PROJ-1"}}}
	p, _ := newPipeline(t, "allowed_actions: [use_existing_ticket, create_ticket]\nsimilarity: {min_similarity: 0.95}\n", &fakeGenerator{doc: scenarioDoc}, search)

	res, err := p.Suggest(context.Background(), Selector{PullRequest: 7})
	require.NoError(t, err)

	assert.Equal(t, StatusReady, res.Status)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, action.TypeCreateTicket, res.Actions[0].Kind())
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, "similarity 0.9 below threshold 0.95", res.Rejections[0].Reason)
}

func TestScenarioEmptySuggestions(t *testing.T) {
	p, rep := newPipeline(t, "allowed_actions: [create_ticket]\n", &fakeGenerator{doc: `{"actions": []}`}, nil)

	res, err := p.Suggest(context.Background(), Selector{PullRequest: 7})
	require.NoError(t, err)
	assert.Equal(t, StatusNoSuggestions, res.Status)
	assert.Empty(t, res.Actions)
	assert.Contains(t, rep.events, "skip: Jira is not configured, skipping similar issue search")
	assert.NotEqual(t, StatusContextUnavailable, res.Status)
}

func TestContextUnavailable(t *testing.T) {
	gen := &fakeGenerator{doc: scenarioDoc}
	p, rep := newPipeline(t, "allowed_actions: [create_ticket]\n", gen, nil)
	p.Context = &fakeProvider{err: errors.New("404 Not Found")}

	res, err := p.Suggest(context.Background(), Selector{Commit: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, StatusContextUnavailable, res.Status)
	assert.Empty(t, res.Actions)
	assert.Empty(t, gen.prompt, "the model is never asked")
	assert.Contains(t, rep.events, "fail: Could not fetch commit abc123")

	p.Context = &fakeProvider{}
	res, err = p.Suggest(context.Background(), Selector{Branch: "main"})
	require.NoError(t, err)
	assert.Equal(t, StatusContextUnavailable, res.Status)
}

func TestEverythingFilteredIsReady(t *testing.T) {
	p, _ := newPipeline(t, "", &fakeGenerator{doc: scenarioDoc}, nil)

	res, err := p.Suggest(context.Background(), Selector{PullRequest: 7})
	require.NoError(t, err)
	assert.Equal(t, StatusReady, res.Status)
	assert.Empty(t, res.Actions)
	assert.Len(t, res.Rejections, 2)
}

func TestGeneratorFailuresMeanNoSuggestions(t *testing.T) {
	for name, doc := range map[string]string{
		"absent":        "",
		"missing key":   `{"suggestions": []}`,
		"untyped entry": `{"actions": [{"summary": "x"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			p, _ := newPipeline(t, "allowed_actions: [create_ticket]\n", &fakeGenerator{doc: doc}, nil)
			res, err := p.Suggest(context.Background(), Selector{PullRequest: 7})
			require.NoError(t, err)
			assert.Equal(t, StatusNoSuggestions, res.Status)
		})
	}
}

func TestSearchFailureDoesNotHalt(t *testing.T) {
	search := &fakeSearcher{err: errors.New("connection refused")}
	gen := &fakeGenerator{doc: scenarioDoc}
	p, _ := newPipeline(t, "allowed_actions: [create_ticket]\n", gen, search)
	p.Context = &fakeProvider{commit: &promptctx.Commit{SHA: "abc", Message: "Fix login bug\n\ndetails"}}

	res, err := p.Suggest(context.Background(), Selector{Commit: "abc"})
	require.NoError(t, err)
	assert.Equal(t, StatusReady, res.Status)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "Fix login bug", search.text)
	assert.Contains(t, gen.prompt, "None were found.")
}

func TestSelectorValidation(t *testing.T) {
	p, _ := newPipeline(t, "", &fakeGenerator{}, nil)
	for _, sel := range []Selector{{}, {PullRequest: 1, Commit: "abc"}, {Commit: "abc", Branch: "main"}, {Branch: "  "}} {
		_, err := p.Suggest(context.Background(), sel)
		assert.ErrorIs(t, err, ErrInvalidSelector)
	}
	assert.NoError(t, Selector{Branch: "main"}.Validate())
}

func TestChainFallsBack(t *testing.T) {
	chain := Chain{
		&fakeProvider{err: errors.New("github down")},
		&fakeProvider{commit: &promptctx.Commit{SHA: "abc", Message: "local"}},
	}
	c, err := chain.Commit(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "local", c.Message)

	_, err = Chain{&fakeProvider{err: errors.New("a")}, &fakeProvider{err: errors.New("b")}}.Branch(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")

	_, err = Chain{}.PullRequest(context.Background(), 1)
	assert.Error(t, err)
}
