package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/overlay"
	"github.com/dshills/statusicons/internal/project/tree"
	"github.com/dshills/statusicons/internal/vcs"
)

// ScanOptions controls a headless status scan.
type ScanOptions struct {
	// Timeout bounds the wait for fetches to settle. Zero waits until ctx
	// is done.
	Timeout time.Duration

	// Members lists archive entries below their archives.
	Members bool
}

// Line is one item of a scan report.
type Line struct {
	Path   string
	Glyph  rune
	State  overlay.State
	Status vcs.Status
}

// Scan renders every item of the tree through the overlay until no fetch
// is pending, or the timeout elapses, and reports what was drawn. Paths
// whose fetch failed are not requested again.
func (a *App) Scan(ctx context.Context, opts ScanOptions) ([]Line, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	a.ctx = ctx

	nodes, err := a.scanNodes(opts.Members)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]bool)
	)
	sub, err := a.bus.SubscribeFunc(vcs.TopicStatusCompleted, func(_ context.Context, ev any) error {
		if c, ok := ev.(vcs.StatusCompleted); ok && c.Err != nil {
			mu.Lock()
			for _, p := range c.Paths {
				failed[p] = true
			}
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = a.bus.Unsubscribe(sub) }()

	// Subscribed after the failure hook, so failures are recorded before
	// the next pass runs.
	wake := make(chan struct{}, 1)
	signal := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	broker, err := overlay.NewBroker(a.bus, nil, []overlay.Repainter{overlay.RepainterFunc(signal)})
	if err != nil {
		return nil, err
	}
	defer broker.Close()

	if err := a.startFetcher(ctx); err != nil {
		return nil, err
	}
	defer a.fetcher.Stop()

	for pass := 1; ; pass++ {
		mu.Lock()
		skip := make(map[string]bool, len(failed))
		for p := range failed {
			skip[p] = true
		}
		mu.Unlock()

		lines := a.renderScan(nodes, skip)
		if a.fetcher.Pending() == 0 {
			a.log.Debug("scan settled", zap.Int("passes", pass), zap.Int("items", len(lines)))
			return lines, nil
		}
		select {
		case <-ctx.Done():
			a.log.Info("scan timed out", zap.Int("pending", a.fetcher.Pending()))
			return lines, nil
		case <-wake:
		}
	}
}

// scanNodes expands the project tree completely and returns its rows.
func (a *App) scanNodes(members bool) ([]*tree.Node, error) {
	t := a.project.tree
	if members {
		opts, err := a.treeOptions()
		if err != nil {
			return nil, err
		}
		if t, err = tree.New(a.fs, "", append(opts, tree.WithArchiveMembers())...); err != nil {
			return nil, err
		}
	}
	t.Walk(func(n *tree.Node) {
		if !n.IsDir() {
			return
		}
		if err := t.Expand(n); err != nil {
			a.log.Warn("expanding", zap.String("path", n.Path()), zap.Error(err))
		}
	})
	return t.Visible(), nil
}

// renderScan runs one render pass. Items whose persistent path is in skip
// are reported from the cache without rendering.
func (a *App) renderScan(nodes []*tree.Node, skip map[string]bool) []Line {
	lines := make([]Line, 0, len(nodes))
	for _, n := range nodes {
		persistent := a.renderer.Resolver().Resolve(n)
		line := Line{Path: n.Path(), Glyph: ' '}
		if persistent != nil {
			line.Status = a.fetcher.Status(persistent.AssetPath())
			if skip[persistent.AssetPath()] {
				lines = append(lines, line)
				continue
			}
		}
		c := &scanCanvas{}
		line.State = a.renderer.RenderProjectItem(n, rowRect(0, 80, 0), c)
		if c.drawn {
			line.Glyph = c.glyph
		}
		if persistent != nil {
			line.Status = a.fetcher.Status(persistent.AssetPath())
		}
		lines = append(lines, line)
	}
	return lines
}

// scanCanvas records the glyph of a single row.
type scanCanvas struct {
	glyph rune
	drawn bool
}

func (c *scanCanvas) DrawTexture(rect overlay.Rect, tex overlay.Texture) {
	c.glyph, c.drawn = tex.Glyph, true
	if rect.W < CellWidth && tex.Small != 0 {
		c.glyph = tex.Small
	}
}

func (c *scanCanvas) RegisterClick(overlay.Rect, string, func()) {}

