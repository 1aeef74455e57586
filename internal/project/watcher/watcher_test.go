package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/statusicons/internal/project/ignore"
)

// fakeSource feeds events by hand.
type fakeSource struct {
	events chan Event
	errors chan error
	once   sync.Once
	closed bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan Event, 10), errors: make(chan error, 10)}
}

func (f *fakeSource) Add(string) error     { return nil }
func (f *fakeSource) AddTree(string) error { return nil }
func (f *fakeSource) Events() <-chan Event { return f.events }
func (f *fakeSource) Errors() <-chan error { return f.errors }
func (f *fakeSource) Close() error {
	f.once.Do(func() {
		f.closed = true
		close(f.events)
		close(f.errors)
	})
	return nil
}

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "CREATE|WRITE", (OpCreate | OpWrite).String())
	assert.Equal(t, "NONE", Op(0).String())
	assert.True(t, (OpCreate | OpWrite).Has(OpWrite))
	assert.False(t, OpCreate.Has(OpRemove))
}

func TestScopeClassify(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "proj")
	scope := Scope{
		Root:        root,
		GitDir:      filepath.Join(string(filepath.Separator), "work", ".git"),
		ConfigFiles: []string{filepath.Join(root, ".statusicons.toml")},
	}

	tests := []struct {
		path string
		kind Kind
		rel  string
		ok   bool
	}{
		{filepath.Join(root, "src", "main.go"), KindWorkspace, "src/main.go", true},
		{root, KindWorkspace, "", true},
		{filepath.Join(root, ".statusicons.toml"), KindConfig, "", true},
		{filepath.Join(root, ".git", "index"), KindGitMeta, "", true},
		{filepath.Join(scope.GitDir, "HEAD"), KindGitMeta, "", true},
		{filepath.Join(string(filepath.Separator), "work", "other"), 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ev, ok := scope.Classify(tt.path, OpWrite)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.rel, ev.Rel)
			assert.Equal(t, tt.path, ev.Path)
			assert.Equal(t, OpWrite, ev.Op)
		})
	}
}

func TestDebounceMergesPerPathInOrder(t *testing.T) {
	src := newFakeSource()
	d := Debounce(src, 30*time.Millisecond)
	defer d.Close()

	src.events <- Event{Path: "/b", Op: OpCreate}
	src.events <- Event{Path: "/a", Op: OpWrite}
	src.events <- Event{Path: "/b", Op: OpWrite}

	first := recv(t, d.Events())
	second := recv(t, d.Events())
	assert.Equal(t, "/b", first.Path)
	assert.Equal(t, OpCreate|OpWrite, first.Op)
	assert.Equal(t, "/a", second.Path)
}

func TestDebounceWaitsForQuiet(t *testing.T) {
	src := newFakeSource()
	d := Debounce(src, time.Hour)
	defer d.Close()

	src.events <- Event{Path: "/a", Op: OpWrite}
	select {
	case ev := <-d.Events():
		t.Fatalf("released %v before the quiet period", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebounceFlushesWhenSourceCloses(t *testing.T) {
	src := newFakeSource()
	d := Debounce(src, time.Hour)

	src.events <- Event{Path: "/a", Op: OpWrite}
	require.NoError(t, src.Close())

	assert.Equal(t, "/a", recv(t, d.Events()).Path)
	_, ok := <-d.Events()
	assert.False(t, ok)
}

func TestDebounceForwardsErrors(t *testing.T) {
	src := newFakeSource()
	d := Debounce(src, time.Hour)
	defer d.Close()

	src.errors <- os.ErrPermission
	select {
	case err := <-d.Errors():
		assert.ErrorIs(t, err, os.ErrPermission)
	case <-time.After(2 * time.Second):
		t.Fatal("error not forwarded")
	}
}

func TestDebounceCloseIdempotent(t *testing.T) {
	src := newFakeSource()
	d := Debounce(src, 10*time.Millisecond)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	assert.True(t, src.closed)
	_, ok := <-d.Events()
	assert.False(t, ok)
}

func TestRunDispatches(t *testing.T) {
	src := newFakeSource()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 1)
	errs := make(chan error, 1)
	go Run(ctx, src, func(ev Event) { events <- ev }, func(err error) { errs <- err })

	src.events <- Event{Path: "/x", Op: OpWrite}
	src.errors <- os.ErrPermission

	assert.Equal(t, "/x", (<-events).Path)
	assert.ErrorIs(t, <-errs, os.ErrPermission)
}

func TestMergeClassifiesAndCloses(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "proj")
	a, b := newFakeSource(), newFakeSource()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := Merge(ctx, Scope{Root: root}, nil, a, b)

	a.events <- Event{Path: filepath.Join(root, "x.txt"), Op: OpWrite}
	b.events <- Event{Path: filepath.Join(string(filepath.Separator), "elsewhere"), Op: OpWrite}
	b.events <- Event{Path: filepath.Join(root, ".git", "index"), Op: OpWrite}

	got := map[Kind]Event{}
	for len(got) < 2 {
		ev := recv(t, out)
		got[ev.Kind] = ev
	}
	assert.Equal(t, "x.txt", got[KindWorkspace].Rel)
	assert.Contains(t, got, KindGitMeta)

	cancel()
	for range out {
	}
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestFSWatcherTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))

	patterns, err := ignore.New("node_modules", "*.tmp")
	require.NoError(t, err)

	w, err := NewFSWatcher(WithIgnore(root, patterns))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.AddTree(root))
	assert.Len(t, w.WatchList(), 2)
	assert.ErrorIs(t, w.Add(filepath.Join(root, "missing")), ErrPathNotExist)

	skipped := filepath.Join(root, "src", "skip.tmp")
	target := filepath.Join(root, "src", "main.go")
	require.NoError(t, os.WriteFile(skipped, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("package main"), 0o644))

	for {
		ev := recv(t, w.Events())
		require.NotEqual(t, skipped, ev.Path)
		if ev.Path == target {
			return
		}
	}
}

func TestFSWatcherAddsNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := NewFSWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.AddTree(root))

	dir := filepath.Join(root, "new")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.Eventually(t, func() bool { return len(w.WatchList()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestFSWatcherClosed(t *testing.T) {
	w, err := NewFSWatcher()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Add(t.TempDir()), ErrClosed)
}
