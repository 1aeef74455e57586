// Package app wires the status overlay into a terminal project browser.
//
// The browser shows two views: the project tree and the hierarchy of the
// directory selected in it (the scene). Every visible row is decorated by
// the overlay renderer. Background status fetches and settings changes
// reach the UI through the refresh broker, which posts a wake-up event to
// the terminal loop.
package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/config"
	"github.com/dshills/statusicons/internal/config/notify"
	"github.com/dshills/statusicons/internal/event"
	"github.com/dshills/statusicons/internal/logging"
	"github.com/dshills/statusicons/internal/overlay"
	"github.com/dshills/statusicons/internal/project/ignore"
	"github.com/dshills/statusicons/internal/project/tree"
	"github.com/dshills/statusicons/internal/renderer/backend"
	"github.com/dshills/statusicons/internal/vcs"
)

// Options configures the application.
type Options struct {
	// Root is the directory to browse. Defaults to the working directory.
	Root string

	// ConfigFiles are loaded after the default locations.
	ConfigFiles []string

	// ConfigOptions are passed to config.New after the defaults.
	ConfigOptions []config.Option

	// Backend is the terminal. Only Run needs one.
	Backend backend.Backend

	// VCS overrides the git backend opened at Root.
	VCS vcs.Backend

	// FS overrides the OS filesystem rooted at Root.
	FS billy.Filesystem

	Logger *zap.Logger
}

// App is the project browser.
type App struct {
	opts Options
	root string
	log  *zap.Logger

	bus      event.Bus
	store    *config.Store
	fetcher  *vcs.Fetcher
	renderer *overlay.Renderer
	broker   *overlay.Broker
	fs       billy.Filesystem
	gitDir   string
	cfgSubs  []*notify.Subscription

	project   *pane
	hierarchy *pane
	focus     *pane
	menu      *menu
	clicks    []click
	message   string

	ctx       context.Context
	backend   backend.Backend
	width     int
	height    int
	wake      atomic.Bool
	rebuild   atomic.Bool
	transient atomic.Bool
	running   atomic.Bool
}

// New creates the application and starts nothing yet.
func New(opts Options) (*App, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, &InitError{Component: "root", Err: err}
	}

	a := &App{
		opts:    opts,
		root:    root,
		log:     logging.OrNop(opts.Logger),
		backend: opts.Backend,
	}
	if err := a.bootstrap(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// bootstrap initializes all components in dependency order.
func (a *App) bootstrap() error {
	var err error

	// 1. Event bus
	a.bus = event.NewBus()

	// 2. Settings
	cfgOpts := []config.Option{
		config.WithFiles(append(config.DefaultFiles(a.root), a.opts.ConfigFiles...)...),
		config.WithLogger(a.log.Named("config")),
	}
	a.store, err = config.New(append(cfgOpts, a.opts.ConfigOptions...)...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	settings := a.store.Settings()

	// 3. Status fetcher
	be := a.opts.VCS
	if be == nil {
		be, err = vcs.OpenGitBackend(a.root,
			vcs.WithRemoteName(settings.VCS.Remote),
			vcs.WithFetch(settings.VCS.FetchRemote),
			vcs.WithGitLogger(a.log.Named("git")))
		if err != nil {
			return &InitError{Component: "vcs", Err: err}
		}
	}
	a.fetcher = vcs.NewFetcher(be,
		vcs.WithBus(a.bus),
		vcs.WithLogger(a.log.Named("fetch")),
		vcs.WithWorkers(settings.VCS.Workers),
		vcs.WithQueueSize(settings.VCS.QueueSize),
		vcs.WithBatchSize(settings.VCS.BatchSize))

	// 4. Overlay renderer
	a.renderer = overlay.NewRenderer(overlay.Config{
		Settings:  a.store,
		Statuses:  a.fetcher,
		Requester: a.fetcher,
		Resolver:  overlay.ContainerResolver{},
		Menu:      a,
		Host:      a,
		Logger:    a.log.Named("overlay"),
	})

	// 5. Trees
	a.fs = a.opts.FS
	if a.fs == nil {
		a.fs = osfs.New(a.root)
		a.gitDir = findGitDir(a.root)
	}
	a.project = newPane(a, overlay.ViewProject)
	a.hierarchy = newPane(a, overlay.ViewHierarchy)
	a.focus = a.project
	if err := a.buildTrees(); err != nil {
		return &InitError{Component: "tree", Err: err}
	}

	// 6. Refresh broker
	var brokerOpts []overlay.BrokerOption
	if settings.Overlay.Coalesce {
		brokerOpts = append(brokerOpts, overlay.WithCoalescing())
	}
	brokerOpts = append(brokerOpts, overlay.WithBrokerLogger(a.log.Named("broker")))
	a.broker, err = overlay.NewBroker(a.bus, a.store,
		[]overlay.Repainter{a.project, a.hierarchy}, brokerOpts...)
	if err != nil {
		return &InitError{Component: "broker", Err: err}
	}

	// 7. Settings that need more than a repaint
	a.cfgSubs = append(a.cfgSubs,
		a.store.SubscribePath("browser", func(notify.Change) {
			a.rebuild.Store(true)
			a.requestRedraw()
		}),
		a.store.SubscribePath("logging.level", func(notify.Change) {
			logging.SetLevel(a.store.Settings().Logging.Level)
		}))
	return nil
}

// treeOptions builds tree options from the current browser settings.
func (a *App) treeOptions() ([]tree.Option, error) {
	s := a.store.Settings().Browser
	patterns, err := ignore.New(s.Ignore...)
	if err != nil {
		return nil, err
	}
	return []tree.Option{
		tree.WithIgnore(patterns),
		tree.WithArchives(s.Archives...),
		tree.WithHidden(s.ShowHidden),
		tree.WithLogger(a.log.Named("tree")),
	}, nil
}

// buildTrees (re)creates the project tree and the hierarchy of the
// current scene, keeping the selection where possible.
func (a *App) buildTrees() error {
	opts, err := a.treeOptions()
	if err != nil {
		return err
	}
	t, err := tree.New(a.fs, "", opts...)
	if err != nil {
		return err
	}
	selected := a.project.selectedPath()
	a.project.setTree(t)
	a.project.selectPath(selected)
	return a.setScene(a.sceneFor(a.project.selected()))
}

// sceneFor returns the directory a project row opens in the hierarchy.
func (a *App) sceneFor(n *tree.Node) string {
	switch {
	case n == nil:
		return ""
	case n.IsDir():
		return n.Path()
	case n.ParentNode() != nil:
		return n.ParentNode().Path()
	default:
		return ""
	}
}

// setScene points the hierarchy view at dir.
func (a *App) setScene(dir string) error {
	if a.hierarchy.tree != nil && a.hierarchy.tree.Root().Path() == dir {
		return nil
	}
	opts, err := a.treeOptions()
	if err != nil {
		return err
	}
	opts = append(opts, tree.WithArchiveMembers(), tree.WithRootRow())
	t, err := tree.New(a.fs, dir, opts...)
	if err != nil {
		return err
	}
	a.hierarchy.setTree(t)
	a.renderer.ForgetMissing()
	a.log.Debug("scene changed", zap.String("scene", dir))
	return nil
}

// Transient implements overlay.Host.
func (a *App) Transient() bool {
	return a.transient.Load()
}

// CurrentScene implements overlay.Host.
func (a *App) CurrentScene() string {
	if a.hierarchy == nil || a.hierarchy.tree == nil {
		return ""
	}
	return a.hierarchy.tree.Root().Path()
}

// requestRedraw wakes the event loop. Safe from any goroutine.
func (a *App) requestRedraw() {
	if a.wake.Swap(true) {
		return
	}
	if a.backend != nil {
		a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	}
}

// Close releases everything New created. It is safe to call twice.
func (a *App) Close() {
	for _, sub := range a.cfgSubs {
		sub.Unsubscribe()
	}
	a.cfgSubs = nil
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.log.Warn("closing broker", zap.Error(err))
		}
	}
	if a.fetcher != nil {
		a.fetcher.Stop()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.bus != nil {
		a.bus.Close()
	}
}

// Root returns the browsed directory.
func (a *App) Root() string { return a.root }

// Store returns the settings store.
func (a *App) Store() *config.Store { return a.store }

// Fetcher returns the status fetcher.
func (a *App) Fetcher() *vcs.Fetcher { return a.fetcher }

// Renderer returns the overlay renderer.
func (a *App) Renderer() *overlay.Renderer { return a.renderer }

// startFetcher starts the workers unless they already run.
func (a *App) startFetcher(ctx context.Context) error {
	if err := a.fetcher.Start(ctx); err != nil && !errors.Is(err, vcs.ErrFetcherRunning) {
		return err
	}
	return nil
}
