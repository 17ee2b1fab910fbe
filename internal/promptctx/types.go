// Package promptctx defines the code-change context and candidate issues fed into prompts.
package promptctx

import (
	"encoding/json"
	"strings"
)

// Kind tags the Context variant.
type Kind string

const (
	KindPullRequest Kind = "pull_request"
	KindCommit      Kind = "commit"
	KindBranch      Kind = "branch"
)

// Context describes one code change. Exactly one of PullRequest, Commit or Branch is set.
type Context struct {
	PullRequest *PullRequest
	Commit      *Commit
	Branch      *Branch
}

// PullRequest is a pull request with its commit messages in order.
type PullRequest struct {
	// Number is the pull request number.
	Number int `json:"number"`
	// Title is the pull request title.
	Title string `json:"title"`
	// Description is the pull request body, possibly empty.
	Description string `json:"description"`
	// CommitMessages holds the full message of every commit, oldest first.
	CommitMessages []string `json:"commit_messages"`
}

// Commit is a single commit.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// Branch is a branch and its head commit.
type Branch struct {
	Name                string `json:"name"`
	LatestCommitSHA     string `json:"latest_commit_sha"`
	LatestCommitMessage string `json:"latest_commit_message"`
}

// CandidateIssue is an existing ticket that may describe the same work.
type CandidateIssue struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// ForPullRequest wraps a pull request.
func ForPullRequest(pr PullRequest) *Context { return &Context{PullRequest: &pr} }

// ForCommit wraps a commit.
func ForCommit(c Commit) *Context { return &Context{Commit: &c} }

// ForBranch wraps a branch.
func ForBranch(b Branch) *Context { return &Context{Branch: &b} }

// Kind returns the variant tag, or "" for an empty Context.
func (c *Context) Kind() Kind {
	switch {
	case c == nil:
		return ""
	case c.PullRequest != nil:
		return KindPullRequest
	case c.Commit != nil:
		return KindCommit
	case c.Branch != nil:
		return KindBranch
	default:
		return ""
	}
}

// SearchText is the text used to look up similar issues: the pull request title, or the
// first line of the commit message.
func (c *Context) SearchText() string {
	switch c.Kind() {
	case KindPullRequest:
		return strings.TrimSpace(c.PullRequest.Title)
	case KindCommit:
		return firstLine(c.Commit.Message)
	case KindBranch:
		if msg := firstLine(c.Branch.LatestCommitMessage); msg != "" {
			return msg
		}
		return strings.TrimSpace(c.Branch.Name)
	default:
		return ""
	}
}

// MarshalJSON emits the active variant flattened with a "type" field.
func (c *Context) MarshalJSON() ([]byte, error) {
	var body any
	switch c.Kind() {
	case KindPullRequest:
		body = c.PullRequest
	case KindCommit:
		body = c.Commit
	case KindBranch:
		body = c.Branch
	default:
		return []byte("null"), nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = string(c.Kind())
	return json.Marshal(fields)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
