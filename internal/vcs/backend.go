package vcs

import "context"

// LocalState is the working-tree part of a Status.
type LocalState struct {
	Kind   Kind
	Staged bool
}

// Backend answers status queries for batches of asset paths. Paths are
// slash separated and relative to the browser root; "" is the root itself.
//
// Implementations need not be safe for concurrent use; Fetcher serializes
// calls per backend.
type Backend interface {
	// Local returns the working-tree state for each path.
	Local(ctx context.Context, paths []string) (map[string]LocalState, error)

	// Remote reports, for each path, whether the upstream branch holds a
	// different version than HEAD.
	Remote(ctx context.Context, paths []string) (map[string]bool, error)
}
