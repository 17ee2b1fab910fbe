// Package githubapi fetches pull request, commit and branch context from the GitHub REST API.
package githubapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"golang.org/x/sync/errgroup"

	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

const commitsPerPage = 100

// Client reads code-change context for one repository.
type Client struct {
	logger *slog.Logger
	gh     *github.Client
	owner  string
	repo   string
}

// Option customizes a Client.
type Option func(*Client) error

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse GitHub base URL: %w", err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// NewClient creates a client for owner/repo. An empty token makes unauthenticated requests.
func NewClient(logger *slog.Logger, token, owner, repo string, opts ...Option) (*Client, error) {
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("GitHub owner and repo are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	gh := github.NewClient(nil)
	if t := strings.TrimSpace(token); t != "" {
		gh = gh.WithAuthToken(t)
	}
	c := &Client{logger: logger, gh: gh, owner: owner, repo: repo}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Repo returns the owner/repo slug.
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

// PullRequest fetches a pull request with the full messages of all its commits.
func (c *Client) PullRequest(ctx context.Context, number int) (*promptctx.PullRequest, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive")
	}
	c.logger.Debug("fetching pull request", "repo", c.Repo(), "number", number)

	// The pull request and its commit list are independent requests.
	var (
		pr       *github.PullRequest
		messages []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if pr, _, err = c.gh.PullRequests.Get(gctx, c.owner, c.repo, number); err != nil {
			return fmt.Errorf("get pull request %d: %w", number, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		messages, err = c.commitMessages(gctx, number)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &promptctx.PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Description:    pr.GetBody(),
		CommitMessages: messages,
	}, nil
}

func (c *Client) commitMessages(ctx context.Context, number int) ([]string, error) {
	var messages []string
	opts := &github.ListOptions{PerPage: commitsPerPage}
	for {
		commits, resp, err := c.gh.PullRequests.ListCommits(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list commits of pull request %d: %w", number, err)
		}
		for _, rc := range commits {
			messages = append(messages, rc.GetCommit().GetMessage())
		}
		if resp == nil || resp.NextPage == 0 {
			return messages, nil
		}
		opts.Page = resp.NextPage
	}
}

// Commit fetches a commit by SHA (or any ref GitHub resolves).
func (c *Client) Commit(ctx context.Context, sha string) (*promptctx.Commit, error) {
	sha = strings.TrimSpace(sha)
	if sha == "" {
		return nil, fmt.Errorf("commit SHA is empty")
	}
	c.logger.Debug("fetching commit", "repo", c.Repo(), "sha", sha)

	rc, _, err := c.gh.Repositories.GetCommit(ctx, c.owner, c.repo, sha, nil)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", sha, err)
	}
	return &promptctx.Commit{
		SHA:     rc.GetSHA(),
		Message: rc.GetCommit().GetMessage(),
	}, nil
}

// Branch fetches a branch and its head commit.
func (c *Client) Branch(ctx context.Context, name string) (*promptctx.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("branch name is empty")
	}
	c.logger.Debug("fetching branch", "repo", c.Repo(), "branch", name)

	b, _, err := c.gh.Repositories.GetBranch(ctx, c.owner, c.repo, name, 1)
	if err != nil {
		return nil, fmt.Errorf("get branch %s: %w", name, err)
	}
	head := b.GetCommit()
	return &promptctx.Branch{
		Name:                b.GetName(),
		LatestCommitSHA:     head.GetSHA(),
		LatestCommitMessage: head.GetCommit().GetMessage(),
	}, nil
}
