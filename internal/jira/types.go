// Package jira is a small Jira Cloud REST v3 client covering the operations jira-ai needs:
// similar-issue search, status lookup, issue creation, transitions and comments.
package jira

import "encoding/json"

// Issue is the subset of a Jira issue jira-ai reads.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields are the requested issue fields.
type IssueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description"`
	Status      *Status         `json:"status"`
	Updated     string          `json:"updated"`
}

// Status is an issue workflow status.
type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Transition is a workflow transition available on an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

// IssueInput describes a new issue.
type IssueInput struct {
	Project     string
	Summary     string
	Description string
	IssueType   string
	Labels      []string
}

type searchResponse struct {
	Issues []Issue `json:"issues"`
}

type transitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

type createdIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}
