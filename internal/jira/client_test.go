package jira

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &rec.body))
		}
		calls = append(calls, rec)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "dev@acme.io", user)
		assert.Equal(t, "token", pass)

		handler, found := routes[r.Method+" "+r.URL.Path]
		if !found {
			http.NotFound(w, r)
			return
		}
		handler(w)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "dev@acme.io", "token"), &calls
}

func TestSimilarityJQL(t *testing.T) {
	assert.Equal(t, `text ~ "Fix \"quoted\" C:\\path" AND updated >= -60d ORDER BY updated DESC`,
		SimilarityJQL("Fix \"quoted\"\n C:\\path", 60))
	assert.Equal(t, `text ~ "plain" ORDER BY updated DESC`, SimilarityJQL("plain", 0))

	long := strings.Repeat("a", maxSearchTextLen-1) + "é login"
	jql := SimilarityJQL(long, 0)
	assert.True(t, utf8.ValidString(jql))
	assert.Equal(t, `text ~ "`+strings.Repeat("a", maxSearchTextLen-1)+`" ORDER BY updated DESC`, jql)
}

func TestSearchSimilar(t *testing.T) {
	client, calls := newTestServer(t, map[string]func(http.ResponseWriter){
		"GET /rest/api/3/search/jql": func(w http.ResponseWriter) {
			_, _ = io.WriteString(w, `{"issues": [
				{"id": "1", "key": "PROJ-1", "fields": {"summary": "OAuth login", "description": {"type": "doc", "version": 1, "content": [{"type": "paragraph", "content": [{"type": "text", "text": "Support "}, {"type": "text", "text": "OAuth"}]}]}}},
				{"id": "2", "key": "PROJ-2", "fields": {"summary": "Other", "description": null}}
			]}`)
		},
	})

	got, err := client.SearchSimilar(context.Background(), "Add OAuth login", 30, 5)
	require.NoError(t, err)
	assert.Equal(t, []promptctx.CandidateIssue{
		{Key: "PROJ-1", Summary: "OAuth login", Description: "Support OAuth"},
		{Key: "PROJ-2", Summary: "Other"},
	}, got)

	require.Len(t, *calls, 1)
	assert.Contains(t, (*calls)[0].query, "maxResults=5")
	assert.Contains(t, (*calls)[0].query, "updated+%3E%3D+-30d")

	got, err = client.SearchSimilar(context.Background(), "   ", 30, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, *calls, 1, "blank text does not hit the server")
}

func TestGetStatus(t *testing.T) {
	client, _ := newTestServer(t, map[string]func(http.ResponseWriter){
		"GET /rest/api/3/issue/PROJ-1": func(w http.ResponseWriter) {
			_, _ = io.WriteString(w, `{"key": "PROJ-1", "fields": {"status": {"id": "3", "name": "In Progress"}}}`)
		},
	})

	status, err := client.GetStatus(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "In Progress", status)

	_, err = client.GetStatus(context.Background(), "PROJ-404")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCreateIssue(t *testing.T) {
	client, calls := newTestServer(t, map[string]func(http.ResponseWriter){
		"POST /rest/api/3/issue": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id": "10001", "key": "PROJ-12"}`)
		},
	})

	key, err := client.CreateIssue(context.Background(), IssueInput{
		Project: "PROJ", Summary: "Add retries", Description: "line one\nline two", IssueType: "Task", Labels: []string{"backend"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROJ-12", key)

	fields := (*calls)[0].body["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"key": "PROJ"}, fields["project"])
	assert.Equal(t, map[string]any{"name": "Task"}, fields["issuetype"])
	assert.Equal(t, []any{"backend"}, fields["labels"])
	assert.Equal(t, "doc", fields["description"].(map[string]any)["type"])
	assert.Len(t, fields["description"].(map[string]any)["content"], 2)
}

func TestTransitionIssue(t *testing.T) {
	client, calls := newTestServer(t, map[string]func(http.ResponseWriter){
		"GET /rest/api/3/issue/PROJ-1/transitions": func(w http.ResponseWriter) {
			_, _ = io.WriteString(w, `{"transitions": [
				{"id": "11", "name": "Start work", "to": {"name": "In Progress"}},
				{"id": "31", "name": "Done", "to": {"name": "Done"}}
			]}`)
		},
		"POST /rest/api/3/issue/PROJ-1/transitions": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNoContent)
		},
	})

	require.NoError(t, client.TransitionIssue(context.Background(), "PROJ-1", "in progress"))
	require.Len(t, *calls, 2)
	assert.Equal(t, map[string]any{"transition": map[string]any{"id": "11"}}, (*calls)[1].body)

	err := client.TransitionIssue(context.Background(), "PROJ-1", "Won't Do")
	assert.ErrorIs(t, err, ErrTransitionNotFound)
	assert.Contains(t, err.Error(), "Start work, Done")
	assert.Len(t, *calls, 3, "no POST for an unknown transition")
}

func TestAddComment(t *testing.T) {
	client, calls := newTestServer(t, map[string]func(http.ResponseWriter){
		"POST /rest/api/3/issue/PROJ-1/comment": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id": "100"}`)
		},
	})

	require.NoError(t, client.AddComment(context.Background(), "PROJ-1", "Fixed in #42"))
	body := (*calls)[0].body["body"].(map[string]any)
	assert.Equal(t, "doc", body["type"])
}

func TestMyself(t *testing.T) {
	client, _ := newTestServer(t, map[string]func(http.ResponseWriter){
		"GET /rest/api/3/myself": func(w http.ResponseWriter) {
			_, _ = io.WriteString(w, `{"displayName": "Dev One", "emailAddress": "dev@acme.io"}`)
		},
	})
	name, err := client.Myself(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dev One", name)
}

func TestBearerAuthWithoutUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"fields": {"status": {"name": "Done"}}}`)
	}))
	defer srv.Close()

	status, err := NewClient(srv.URL, "", "pat").GetStatus(context.Background(), "X-1")
	require.NoError(t, err)
	assert.Equal(t, "Done", status)
}

func TestGetRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"fields": {"status": {"name": "Done"}}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "pat")
	client.Backoff = func() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 5) }

	status, err := client.GetStatus(context.Background(), "X-1")
	require.NoError(t, err)
	assert.Equal(t, "Done", status)
	assert.Equal(t, 3, attempts)
}

func TestPostIsNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "pat")
	client.Backoff = func() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 5) }

	err := client.AddComment(context.Background(), "X-1", "hi")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestUnconfiguredClient(t *testing.T) {
	_, err := NewClient("", "", "").GetStatus(context.Background(), "X-1")
	assert.Error(t, err)
}

func TestDescriptionToPlainText(t *testing.T) {
	assert.Equal(t, "", DescriptionToPlainText(nil))
	assert.Equal(t, "just text", DescriptionToPlainText(json.RawMessage(`"just text"`)))
	raw, err := json.Marshal(PlainTextToADF("a\n\nb"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb", DescriptionToPlainText(raw))
}
