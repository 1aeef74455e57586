package watcher

import (
	"path/filepath"
	"strings"
)

// Scope describes the directories the browser cares about.
type Scope struct {
	// Root is the absolute browser root.
	Root string

	// GitDir is the repository metadata directory. It may lie outside
	// Root when browsing a subdirectory.
	GitDir string

	// ConfigFiles are the settings files in load order.
	ConfigFiles []string
}

// Classify sorts an absolute path into an event. Paths outside the scope
// report false.
func (s Scope) Classify(path string, op Op) (Event, bool) {
	ev := Event{Path: path, Op: op}
	for _, f := range s.ConfigFiles {
		if abs, err := filepath.Abs(f); err == nil && abs == path {
			ev.Kind = KindConfig
			return ev, true
		}
	}
	if s.GitDir != "" && within(s.GitDir, path) {
		ev.Kind = KindGitMeta
		return ev, true
	}

	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return Event{}, false
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == ".git" || strings.HasPrefix(rel, ".git/"):
		ev.Kind = KindGitMeta
	case rel == ".." || strings.HasPrefix(rel, "../"):
		return Event{}, false
	case rel == ".":
		ev.Kind = KindWorkspace
	default:
		ev.Kind, ev.Rel = KindWorkspace, rel
	}
	return ev, true
}

func within(dir, path string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
