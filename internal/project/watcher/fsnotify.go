package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/statusicons/internal/project/ignore"
)

// FSWatcher is a Source backed by fsnotify. Permission-only changes are
// not reported, and directories created under a watched tree are added
// as they appear.
type FSWatcher struct {
	fsw    *fsnotify.Watcher
	root   string
	ignore *ignore.Patterns

	mu     sync.Mutex
	closed bool

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// Option configures an FSWatcher.
type Option func(*FSWatcher)

// WithIgnore skips paths under root that patterns match.
func WithIgnore(root string, patterns *ignore.Patterns) Option {
	return func(w *FSWatcher) {
		w.root, w.ignore = root, patterns
	}
}

// NewFSWatcher creates a watcher with nothing added yet.
func NewFSWatcher(opts ...Option) (*FSWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &FSWatcher{
		fsw:    fsw,
		events: make(chan Event, 256),
		errors: make(chan error, 16),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add watches path.
func (w *FSWatcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	return w.fsw.Add(path)
}

// AddTree watches dir and its subdirectories, skipping ignored ones.
func (w *FSWatcher) AddTree(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.report(err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p, true) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

// WatchList returns the watched paths.
func (w *FSWatcher) WatchList() []string {
	return w.fsw.WatchList()
}

func (w *FSWatcher) Events() <-chan Event { return w.events }
func (w *FSWatcher) Errors() <-chan error { return w.errors }

// Close stops the watcher. It is safe to call twice.
func (w *FSWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *FSWatcher) loop() {
	defer w.wg.Done()
	defer close(w.errors)
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(fe)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *FSWatcher) handle(fe fsnotify.Event) {
	op := toOp(fe.Op)
	if op == 0 || op == OpChmod {
		return
	}

	isDir := false
	if op.Has(OpCreate) {
		if fi, err := os.Stat(fe.Name); err == nil {
			isDir = fi.IsDir()
		}
	}
	if w.ignored(fe.Name, isDir) {
		return
	}
	if isDir {
		if err := w.AddTree(fe.Name); err != nil {
			w.report(err)
		}
	}

	select {
	case w.events <- Event{Path: fe.Name, Op: op}:
	case <-w.done:
	}
}

func (w *FSWatcher) ignored(path string, isDir bool) bool {
	if w.ignore == nil || w.root == "" {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	return w.ignore.Match(filepath.ToSlash(rel), isDir)
}

func (w *FSWatcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func toOp(fo fsnotify.Op) Op {
	var op Op
	for _, m := range []struct {
		from fsnotify.Op
		to   Op
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Chmod, OpChmod},
	} {
		if fo.Has(m.from) {
			op |= m.to
		}
	}
	return op
}

var _ Source = (*FSWatcher)(nil)
