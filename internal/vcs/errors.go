package vcs

import "errors"

// Error types for status fetching.
var (
	// ErrNotRepository indicates the browser root is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrInvalidMode indicates an unknown reflection mode string.
	ErrInvalidMode = errors.New("invalid reflection mode")

	// ErrFetcherRunning indicates Start was called twice.
	ErrFetcherRunning = errors.New("fetcher already running")

	// ErrNoUpstream indicates the current branch has no remote tracking ref.
	ErrNoUpstream = errors.New("no upstream branch")
)
