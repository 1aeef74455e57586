package app

import (
	"github.com/dshills/statusicons/internal/overlay"
	"github.com/dshills/statusicons/internal/project/tree"
	"github.com/dshills/statusicons/internal/renderer/core"
)

// pane is one browser view: a tree, a selection and a scroll offset.
// Only the UI goroutine touches it, except Repaint.
type pane struct {
	app    *App
	view   overlay.View
	tree   *tree.Tree
	rows   []*tree.Node
	cursor int
	offset int
	rect   core.ScreenRect // title row plus body
}

func newPane(a *App, view overlay.View) *pane {
	return &pane{app: a, view: view}
}

// Repaint implements overlay.Repainter. Both views share one frame, so a
// repaint of either redraws the screen.
func (p *pane) Repaint() {
	p.app.requestRedraw()
}

func (p *pane) setTree(t *tree.Tree) {
	p.tree = t
	p.cursor, p.offset = 0, 0
	p.refreshRows()
}

// refreshRows recomputes the visible rows after the tree changed.
func (p *pane) refreshRows() {
	if p.tree == nil {
		p.rows = nil
	} else {
		p.rows = p.tree.Visible()
	}
	p.clamp()
}

func (p *pane) clamp() {
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *pane) selected() *tree.Node {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return nil
	}
	return p.rows[p.cursor]
}

func (p *pane) selectedPath() string {
	if n := p.selected(); n != nil {
		return n.Path()
	}
	return ""
}

// selectPath moves the cursor to the row showing path.
func (p *pane) selectPath(path string) bool {
	for i, n := range p.rows {
		if n.Path() == path {
			p.cursor = i
			return true
		}
	}
	return false
}

func (p *pane) move(delta int) {
	p.cursor += delta
	p.clamp()
}

func (p *pane) bodyTop() int { return p.rect.Top + 1 }

func (p *pane) bodyHeight() int {
	if h := p.rect.Bottom - p.bodyTop(); h > 0 {
		return h
	}
	return 0
}

func (p *pane) scrollToCursor() {
	h := p.bodyHeight()
	if h == 0 {
		return
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+h {
		p.offset = p.cursor - h + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// rowAt maps a screen position to a row index.
func (p *pane) rowAt(x, y int) (int, bool) {
	if x < p.rect.Left || x >= p.rect.Right || y < p.bodyTop() || y >= p.rect.Bottom {
		return 0, false
	}
	idx := p.offset + y - p.bodyTop()
	return idx, idx < len(p.rows)
}

// indent is the nesting shown for n. The hierarchy shows its root row.
func (p *pane) indent(n *tree.Node) int {
	if p.view == overlay.ViewHierarchy {
		return n.Depth()
	}
	return n.Depth() - 1
}

func (p *pane) contains(x, y int) bool {
	return p.rect.Contains(x, y)
}
