package tree

import "errors"

var (
	// ErrNotFound is returned when a path is not in the tree.
	ErrNotFound = errors.New("tree: path not found")

	// ErrNotDirectory is returned when expanding a node without children.
	ErrNotDirectory = errors.New("tree: not a directory")

	// ErrBadArchive is returned when an archive cannot be read.
	ErrBadArchive = errors.New("tree: unreadable archive")
)
