// Package watcher turns file system changes under the browser root into
// classified events: workspace edits invalidate cached status, config
// edits reload settings, and git metadata edits invalidate everything.
//
// A Source reports raw changes. Debounce coalesces bursts on a Source, and
// Merge fans several sources into one classified stream.
package watcher

import (
	"context"
	"errors"
	"strings"
)

// Errors returned by sources.
var (
	ErrClosed       = errors.New("watcher is closed")
	ErrPathNotExist = errors.New("path does not exist")
)

// Op is a set of file system operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

var opNames = []string{"CREATE", "WRITE", "REMOVE", "RENAME", "CHMOD"}

// String joins the names of the operations in op, e.g. "CREATE|WRITE".
func (op Op) String() string {
	if op == 0 {
		return "NONE"
	}
	var parts []string
	for i, name := range opNames {
		if op&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Has reports whether op includes every operation in o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Kind says what a changed path means to the browser.
type Kind int

const (
	KindWorkspace Kind = iota
	KindConfig
	KindGitMeta
)

func (k Kind) String() string {
	switch k {
	case KindWorkspace:
		return "workspace"
	case KindConfig:
		return "config"
	case KindGitMeta:
		return "git"
	default:
		return "unknown"
	}
}

// Event is one change. Sources fill Path and Op; Merge adds Kind and Rel.
type Event struct {
	// Path is the absolute path that changed.
	Path string

	// Rel is Path relative to the scope root in slash form, set for
	// workspace events. The root itself is "".
	Rel string

	Kind Kind
	Op   Op
}

// Source reports raw file system changes.
type Source interface {
	// Add watches one file or directory, not its subdirectories.
	Add(path string) error

	// AddTree watches a directory and every subdirectory that is not
	// ignored.
	AddTree(path string) error

	// Events is closed when the source closes.
	Events() <-chan Event
	Errors() <-chan error

	Close() error
}

// Run hands events and errors from src to the callbacks until ctx is done
// or src closes. Either callback may be nil.
func Run(ctx context.Context, src Source, onEvent func(Event), onError func(error)) {
	events, errs := src.Events(), src.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if onEvent != nil {
				onEvent(ev)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
