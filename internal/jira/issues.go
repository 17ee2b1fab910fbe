package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

// maxSearchTextLen bounds the free text placed into a JQL query.
const maxSearchTextLen = 200

// ErrTransitionNotFound means the issue has no transition with the requested name.
var ErrTransitionNotFound = errors.New("transition not available")

// SimilarityJQL builds the JQL used to look for issues resembling text, limited to issues
// updated in the last lookbackDays days (no limit when lookbackDays <= 0).
func SimilarityJQL(text string, lookbackDays int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxSearchTextLen {
		cut := maxSearchTextLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	text = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text)

	jql := fmt.Sprintf(`text ~ "%s"`, text)
	if lookbackDays > 0 {
		jql += fmt.Sprintf(" AND updated >= -%dd", lookbackDays)
	}
	return jql + " ORDER BY updated DESC"
}

// SearchIssues runs a JQL query and returns at most limit issues.
func (c *Client) SearchIssues(ctx context.Context, jql string, limit int) ([]Issue, error) {
	params := url.Values{
		"jql":        {jql},
		"fields":     {"summary,description,status,updated"},
		"maxResults": {strconv.Itoa(limit)},
	}
	apiURL := fmt.Sprintf("%s/rest/api/3/search/jql?%s", c.URL, params.Encode())

	body, err := c.doRequest(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if len(result.Issues) > limit {
		result.Issues = result.Issues[:limit]
	}
	return result.Issues, nil
}

// SearchSimilar returns up to limit candidate issues whose text matches the search text.
func (c *Client) SearchSimilar(ctx context.Context, text string, lookbackDays, limit int) ([]promptctx.CandidateIssue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	issues, err := c.SearchIssues(ctx, SimilarityJQL(text, lookbackDays), limit)
	if err != nil {
		return nil, err
	}
	out := make([]promptctx.CandidateIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, promptctx.CandidateIssue{
			Key:         issue.Key,
			Summary:     issue.Fields.Summary,
			Description: DescriptionToPlainText(issue.Fields.Description),
		})
	}
	return out, nil
}

// GetStatus returns the current workflow status name of an issue.
func (c *Client) GetStatus(ctx context.Context, key string) (string, error) {
	apiURL := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=status", c.URL, url.PathEscape(key))
	body, err := c.doRequest(ctx, "GET", apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("get issue %s: %w", key, err)
	}
	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		return "", fmt.Errorf("parse issue response: %w", err)
	}
	if issue.Fields.Status == nil {
		return "", fmt.Errorf("issue %s has no status", key)
	}
	return issue.Fields.Status.Name, nil
}

// CreateIssue creates an issue and returns its key.
func (c *Client) CreateIssue(ctx context.Context, in IssueInput) (string, error) {
	fields := map[string]any{
		"project":   map[string]any{"key": in.Project},
		"summary":   in.Summary,
		"issuetype": map[string]any{"name": in.IssueType},
	}
	if in.Description != "" {
		fields["description"] = PlainTextToADF(in.Description)
	}
	if len(in.Labels) > 0 {
		fields["labels"] = in.Labels
	}

	body, err := c.doRequest(ctx, "POST", c.URL+"/rest/api/3/issue", map[string]any{"fields": fields})
	if err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	var created createdIssue
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("parse create response: %w", err)
	}
	return created.Key, nil
}

// Transitions lists the transitions currently available on an issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]Transition, error) {
	apiURL := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.URL, url.PathEscape(key))
	body, err := c.doRequest(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list transitions for %s: %w", key, err)
	}
	var result transitionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse transitions response: %w", err)
	}
	return result.Transitions, nil
}

// TransitionIssue applies the transition whose name, or target status name, matches
// name case-insensitively.
func (c *Client) TransitionIssue(ctx context.Context, key, name string) error {
	available, err := c.Transitions(ctx, key)
	if err != nil {
		return err
	}
	var id string
	names := make([]string, 0, len(available))
	for _, t := range available {
		names = append(names, t.Name)
		if id == "" && (strings.EqualFold(t.Name, name) || strings.EqualFold(t.To.Name, name)) {
			id = t.ID
		}
	}
	if id == "" {
		return fmt.Errorf("%w: %q on %s (available: %s)", ErrTransitionNotFound, name, key, strings.Join(names, ", "))
	}

	apiURL := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.URL, url.PathEscape(key))
	payload := map[string]any{"transition": map[string]any{"id": id}}
	if _, err := c.doRequest(ctx, "POST", apiURL, payload); err != nil {
		return fmt.Errorf("transition %s: %w", key, err)
	}
	return nil
}

// AddComment posts a plain-text comment on an issue.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	apiURL := fmt.Sprintf("%s/rest/api/3/issue/%s/comment", c.URL, url.PathEscape(key))
	if _, err := c.doRequest(ctx, "POST", apiURL, map[string]any{"body": PlainTextToADF(body)}); err != nil {
		return fmt.Errorf("comment on %s: %w", key, err)
	}
	return nil
}
