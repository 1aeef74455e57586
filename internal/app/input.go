package app

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/project/watcher"
	"github.com/dshills/statusicons/internal/renderer/backend"
	"github.com/dshills/statusicons/internal/vcs"
)

// Setting paths bound to keys.
const (
	settingEnabled             = "enabled"
	settingProjectIcons        = "overlay.project_icons"
	settingHierarchyIcons      = "overlay.hierarchy_icons"
	settingProjectReflection   = "overlay.project_reflection"
	settingHierarchyReflection = "overlay.hierarchy_reflection"
)

// Run starts the fetch workers and the file watcher, then runs the
// terminal loop until q, Ctrl+C or ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.backend == nil {
		return ErrNoBackend
	}
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.ctx = ctx

	if err := a.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer a.backend.Shutdown()

	if err := a.startFetcher(ctx); err != nil {
		return &InitError{Component: "fetcher", Err: err}
	}
	defer a.fetcher.Stop()

	fsEvents := a.startWatcher(ctx)
	input := a.startInputPolling(ctx)

	a.log.Info("browser started", zap.String("root", a.root))
	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-input:
			if !ok {
				return nil
			}
			if err := a.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			a.handleFileEvent(ev)
		}
		a.draw()
	}
}

// startInputPolling forwards backend events to a channel. PollEvent
// blocks, so the goroutine only exits once the backend is shut down or
// the next event arrives after ctx is done.
func (a *App) startInputPolling(ctx context.Context) <-chan backend.Event {
	events := make(chan backend.Event, 100)
	go func() {
		defer close(events)
		for {
			ev := a.backend.PollEvent()
			select {
			case <-ctx.Done():
				return
			default:
			}
			if ev.Type == backend.EventNone {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}

func (a *App) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		return a.handleKey(ev)
	case backend.EventMouse:
		a.handleMouse(ev)
	}
	// Resize and interrupt only need the redraw that follows.
	return nil
}

func (a *App) handleKey(ev backend.Event) error {
	a.message = ""
	if a.menu != nil {
		a.handleMenuKey(ev)
		return nil
	}

	switch ev.Key {
	case backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyUp:
		a.moveCursor(-1)
	case backend.KeyDown:
		a.moveCursor(1)
	case backend.KeyPageUp:
		a.moveCursor(-a.focus.bodyHeight())
	case backend.KeyPageDown:
		a.moveCursor(a.focus.bodyHeight())
	case backend.KeyEnter, backend.KeyRight:
		a.expandSelected()
	case backend.KeyLeft:
		a.collapseSelected()
	case backend.KeyTab:
		a.switchFocus()
	case backend.KeyCtrlZ:
		a.runShell()
	case backend.KeyRune:
		return a.handleRune(ev.Rune)
	}
	return nil
}

func (a *App) handleRune(r rune) error {
	switch r {
	case 'q':
		return ErrQuit
	case 'j':
		a.moveCursor(1)
	case 'k':
		a.moveCursor(-1)
	case 'p':
		a.toggle(settingProjectIcons)
	case 'h':
		a.toggle(settingHierarchyIcons)
	case 'e':
		a.toggle(settingEnabled)
	case 'm':
		a.cycleMode()
	case 'r':
		a.refreshSelected(vcs.TierRemote)
	case 'R':
		if err := a.store.Reload(); err != nil {
			a.message = "config: " + err.Error()
		}
	case '!':
		a.runShell()
	}
	return nil
}

func (a *App) moveCursor(delta int) {
	a.focus.move(delta)
	a.selectionChanged()
}

// selectionChanged follows the project selection with the hierarchy.
func (a *App) selectionChanged() {
	if a.focus != a.project {
		return
	}
	if err := a.setScene(a.sceneFor(a.project.selected())); err != nil {
		a.message = "scene: " + err.Error()
	}
}

func (a *App) expandSelected() {
	p := a.focus
	n := p.selected()
	if n == nil || !n.IsDir() {
		return
	}
	if err := p.tree.Expand(n); err != nil {
		a.message = err.Error()
		return
	}
	p.refreshRows()
}

// collapseSelected collapses an open node, or moves to its parent.
func (a *App) collapseSelected() {
	p := a.focus
	n := p.selected()
	if n == nil {
		return
	}
	if n.IsDir() && n.Expanded() && n != p.tree.Root() {
		p.tree.Collapse(n)
		p.refreshRows()
		return
	}
	if parent := n.ParentNode(); parent != nil {
		p.selectPath(parent.Path())
		a.selectionChanged()
	}
}

func (a *App) switchFocus() {
	if a.focus == a.project {
		a.focus = a.hierarchy
	} else {
		a.focus = a.project
	}
}

func (a *App) toggle(path string) {
	if err := a.store.Toggle(path); err != nil {
		a.message = err.Error()
	}
}

// cycleMode switches the focused view between local and remote.
func (a *App) cycleMode() {
	path := settingProjectReflection
	if a.focus == a.hierarchy {
		path = settingHierarchyReflection
	}
	if err := a.store.CycleMode(path); err != nil {
		a.message = err.Error()
	}
}

func (a *App) refreshSelected(tier vcs.Tier) {
	n := a.focus.selected()
	if n == nil {
		return
	}
	if persistent := a.renderer.Resolver().Resolve(n); persistent != nil && persistent.AssetPath() != "" {
		a.refreshStatus(persistent.AssetPath(), tier)
	}
}

func (a *App) handleMouse(ev backend.Event) {
	switch ev.MouseButton {
	case backend.MouseLeft:
		if a.menu != nil {
			a.menu = nil
			return
		}
		if c, ok := hit(a.clicks, ev.MouseX, ev.MouseY); ok {
			c.onClick()
			return
		}
		for _, p := range []*pane{a.project, a.hierarchy} {
			if !p.contains(ev.MouseX, ev.MouseY) {
				continue
			}
			a.focus = p
			if idx, ok := p.rowAt(ev.MouseX, ev.MouseY); ok {
				p.cursor = idx
				a.selectionChanged()
			}
		}
	case backend.MouseWheelUp:
		a.moveCursor(-1)
	case backend.MouseWheelDown:
		a.moveCursor(1)
	}
}

// suspended runs fn with the terminal released. Overlays are hidden
// until it returns.
func (a *App) suspended(fn func() error) error {
	a.transient.Store(true)
	defer func() {
		a.transient.Store(false)
		a.requestRedraw()
	}()

	if err := a.backend.Suspend(); err != nil {
		return err
	}
	ferr := fn()
	if err := a.backend.Resume(); err != nil {
		return errors.Join(ferr, err)
	}
	return ferr
}

// runShell drops to $SHELL in the browsed directory.
func (a *App) runShell() {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	err := a.suspended(func() error {
		cmd := exec.CommandContext(a.context(), sh)
		cmd.Dir = a.root
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		return cmd.Run()
	})
	if err != nil {
		a.log.Warn("shell exited", zap.Error(err))
		a.message = "shell: " + err.Error()
	}
	// The shell may have changed anything.
	a.fetcher.Invalidate(a.context())
	a.refreshTrees()
}

// handleFileEvent reloads config files and invalidates changed paths.
func (a *App) handleFileEvent(ev watcher.Event) {
	a.log.Debug("file changed", zap.String("path", ev.Path), zap.Stringer("kind", ev.Kind), zap.Stringer("op", ev.Op))
	switch ev.Kind {
	case watcher.KindConfig:
		if err := a.store.Reload(); err != nil {
			a.message = "config: " + err.Error()
		}
	case watcher.KindGitMeta:
		a.fetcher.Invalidate(a.context())
	case watcher.KindWorkspace:
		a.fetcher.Invalidate(a.context(), withAncestors(ev.Rel)...)
		a.refreshTrees(ev.Rel)
	}
}

func (a *App) refreshTrees(paths ...string) {
	for _, p := range []*pane{a.project, a.hierarchy} {
		if p.tree == nil {
			continue
		}
		selected := p.selectedPath()
		if err := p.tree.Refresh(paths...); err != nil {
			a.log.Debug("tree refresh", zap.Error(err))
		}
		p.refreshRows()
		p.selectPath(selected)
	}
	a.renderer.ForgetMissing()
}

func (a *App) context() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}
