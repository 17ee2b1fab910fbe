package pipeline

import (
	"context"
	"errors"

	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

// Chain asks each provider in turn and returns the first successful answer.
type Chain []ContextProvider

// PullRequest implements ContextProvider.
func (c Chain) PullRequest(ctx context.Context, number int) (*promptctx.PullRequest, error) {
	return first(c, func(p ContextProvider) (*promptctx.PullRequest, error) { return p.PullRequest(ctx, number) })
}

// Commit implements ContextProvider.
func (c Chain) Commit(ctx context.Context, sha string) (*promptctx.Commit, error) {
	return first(c, func(p ContextProvider) (*promptctx.Commit, error) { return p.Commit(ctx, sha) })
}

// Branch implements ContextProvider.
func (c Chain) Branch(ctx context.Context, name string) (*promptctx.Branch, error) {
	return first(c, func(p ContextProvider) (*promptctx.Branch, error) { return p.Branch(ctx, name) })
}

func first[T any](providers []ContextProvider, fetch func(ContextProvider) (*T, error)) (*T, error) {
	var errs []error
	for _, p := range providers {
		v, err := fetch(p)
		if err == nil && v != nil {
			return v, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, errors.New("no context provider available")
	}
	return nil, errors.Join(errs...)
}
