// Package localgit reads commit and branch context from the local git checkout, and detects
// the GitHub repository the checkout points at.
package localgit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

// ErrPullRequestsUnsupported is returned by PullRequest: a checkout has no pull requests.
var ErrPullRequestsUnsupported = errors.New("pull requests are not available from a local repository")

// Repo is an opened local repository.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository containing dir, searching parent directories.
func Open(dir string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %q: %w", dir, err)
	}
	return &Repo{repo: r}, nil
}

// PullRequest always fails.
func (r *Repo) PullRequest(context.Context, int) (*promptctx.PullRequest, error) {
	return nil, ErrPullRequestsUnsupported
}

// Commit resolves a revision (full or abbreviated SHA, or any ref) to a commit.
func (r *Repo) Commit(_ context.Context, rev string) (*promptctx.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(strings.TrimSpace(rev)))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", rev, err)
	}
	c, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	return &promptctx.Commit{SHA: c.Hash.String(), Message: c.Message}, nil
}

// Branch reads a local branch, falling back to its origin remote-tracking branch.
func (r *Repo) Branch(_ context.Context, name string) (*promptctx.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("branch name is empty")
	}
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		ref, err = r.repo.Reference(plumbing.NewRemoteReferenceName("origin", name), true)
	}
	if err != nil {
		return nil, fmt.Errorf("find branch %q: %w", name, err)
	}
	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read head of %q: %w", name, err)
	}
	return &promptctx.Branch{
		Name:                name,
		LatestCommitSHA:     c.Hash.String(),
		LatestCommitMessage: c.Message,
	}, nil
}

// GitHubRemote returns owner and repo parsed from the URL of the named remote.
func (r *Repo) GitHubRemote(remote string) (string, string, error) {
	rem, err := r.repo.Remote(remote)
	if err != nil {
		return "", "", fmt.Errorf("remote %q: %w", remote, err)
	}
	for _, u := range rem.Config().URLs {
		if owner, repo, ok := ParseGitHubURL(u); ok {
			return owner, repo, nil
		}
	}
	return "", "", fmt.Errorf("remote %q does not point at github.com", remote)
}

// ParseGitHubURL extracts owner and repo from https, ssh and scp-style GitHub URLs.
func ParseGitHubURL(raw string) (string, string, bool) {
	s := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "ssh://git@github.com/", "git@github.com:", "git://github.com/"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")
			owner, repo, ok := strings.Cut(s, "/")
			if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
				return "", "", false
			}
			return owner, repo, true
		}
	}
	return "", "", false
}
