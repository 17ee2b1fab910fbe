package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knightmare-26/jira-cli/internal/logging"
	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := NewClient(logging.Discard(), "gh-token", "acme", "api", WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestPullRequestCollectsAllCommitPages(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/repos/acme/api/pulls/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"number": 42, "title": "Add OAuth login", "body": "Closes PROJ-7"}`)
	})
	mux.HandleFunc("/repos/acme/api/pulls/42/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = io.WriteString(w, `[{"sha": "c3", "commit": {"message": "third"}}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/api/pulls/42/commits?page=2&per_page=100>; rel="next"`, srvURL))
		_, _ = io.WriteString(w, `[{"sha": "c1", "commit": {"message": "first\n\nbody"}}, {"sha": "c2", "commit": {"message": "second"}}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	c, err := NewClient(logging.Discard(), "gh-token", "acme", "api", WithBaseURL(srv.URL))
	require.NoError(t, err)

	pr, err := c.PullRequest(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &promptctx.PullRequest{
		Number:         42,
		Title:          "Add OAuth login",
		Description:    "Closes PROJ-7",
		CommitMessages: []string{"first\n\nbody", "second", "third"},
	}, pr)
}

func TestPullRequestNotFound(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	_, err := c.PullRequest(context.Background(), 999)
	assert.Error(t, err)

	_, err = c.PullRequest(context.Background(), 0)
	assert.Error(t, err)
}

func TestCommit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/commits/abc123", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"sha": "abc123def", "commit": {"message": "Fix null deref in parser"}}`)
	})
	c := newTestClient(t, mux)

	commit, err := c.Commit(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, &promptctx.Commit{SHA: "abc123def", Message: "Fix null deref in parser"}, commit)
}

func TestBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/branches/main", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"name": "main", "commit": {"sha": "fff000", "commit": {"message": "Merge pull request #41"}}}`)
	})
	c := newTestClient(t, mux)

	branch, err := c.Branch(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, &promptctx.Branch{Name: "main", LatestCommitSHA: "fff000", LatestCommitMessage: "Merge pull request #41"}, branch)

	_, err = c.Branch(context.Background(), " ")
	assert.Error(t, err)
}

func TestNewClientRequiresRepo(t *testing.T) {
	_, err := NewClient(nil, "", "acme", "")
	assert.Error(t, err)
}

func TestResolveTokenPrefersConfigured(t *testing.T) {
	t.Setenv("GH_TOKEN", "from-env")
	assert.Equal(t, "configured", ResolveToken(context.Background(), " configured "))
	assert.Equal(t, "from-env", ResolveToken(context.Background(), ""))
}
