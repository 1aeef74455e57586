package app

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/project/ignore"
	"github.com/dshills/statusicons/internal/project/watcher"
)

const watchDebounce = 150 * time.Millisecond

// startWatcher watches the workspace, the config files and the git
// metadata. It returns nil when watching is off or the browser does not
// run on the OS filesystem.
func (a *App) startWatcher(ctx context.Context) <-chan watcher.Event {
	settings := a.store.Settings()
	if !settings.Browser.Watch || a.opts.FS != nil {
		return nil
	}
	patterns, err := ignore.New(settings.Browser.Ignore...)
	if err != nil {
		a.log.Warn("watch ignore patterns", zap.Error(err))
		return nil
	}

	ws, err := watcher.NewFSWatcher(watcher.WithIgnore(a.root, patterns))
	if err != nil {
		a.log.Warn("file watcher unavailable", zap.Error(err))
		return nil
	}
	if err := ws.AddTree(a.root); err != nil {
		a.log.Warn("watching workspace", zap.Error(err))
	}
	for _, dir := range a.configDirs() {
		_ = ws.Add(dir)
	}
	sources := []watcher.Source{watcher.Debounce(ws, watchDebounce)}

	// Git metadata sits under an ignored directory, so it gets its own
	// unfiltered watcher.
	if a.gitDir != "" {
		if gw, err := watcher.NewFSWatcher(); err == nil {
			if err := gw.Add(a.gitDir); err != nil {
				a.log.Debug("watching git dir", zap.Error(err))
			}
			sources = append(sources, watcher.Debounce(gw, watchDebounce))
		}
	}

	return watcher.Merge(ctx, a.scope(), func(err error) {
		a.log.Debug("watcher error", zap.Error(err))
	}, sources...)
}

func (a *App) scope() watcher.Scope {
	return watcher.Scope{Root: a.root, GitDir: a.gitDir, ConfigFiles: a.store.Files()}
}

// configDirs returns the existing directories holding config files.
func (a *App) configDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range a.store.Files() {
		dir := filepath.Dir(f)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// findGitDir returns the .git directory of the repository holding dir.
func findGitDir(dir string) string {
	for {
		candidate := filepath.Join(dir, ".git")
		if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// withAncestors returns rel and every directory above it, since directory
// statuses aggregate their contents.
func withAncestors(rel string) []string {
	out := []string{rel}
	for rel != "" {
		rel = path.Dir(rel)
		if rel == "." {
			rel = ""
		}
		out = append(out, rel)
	}
	return out
}
