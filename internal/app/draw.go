package app

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/metrics"
	"github.com/dshills/statusicons/internal/overlay"
	"github.com/dshills/statusicons/internal/project/tree"
	"github.com/dshills/statusicons/internal/renderer/core"
	"github.com/dshills/statusicons/internal/vcs"
)

var (
	selectedBG = core.ColorFromRGB(0x26, 0x32, 0x38)
	titleStyle = core.DefaultStyle().Bold()
	dimStyle   = core.DefaultStyle().Dim()
)

// layout splits the screen into the two panes and the status line.
func (a *App) layout() {
	a.width, a.height = a.backend.Size()
	body := a.height - 1
	if body < 0 {
		body = 0
	}
	half := a.width / 2
	a.project.rect = core.RectFromSize(0, 0, body, half)
	a.hierarchy.rect = core.RectFromSize(0, half+1, body, a.width-half-1)
}

// draw renders one full frame.
func (a *App) draw() {
	start := time.Now()
	a.wake.Store(false)

	if a.rebuild.Swap(false) {
		if err := a.buildTrees(); err != nil {
			a.log.Warn("rebuilding trees", zap.Error(err))
			a.message = "tree: " + err.Error()
		}
	}

	a.layout()
	a.clicks = a.clicks[:0]
	a.backend.Clear()
	a.drawPane(a.project)
	a.drawSeparator()
	a.drawPane(a.hierarchy)
	a.drawStatusLine()
	if a.menu != nil {
		a.drawMenu()
	}
	a.backend.Show()

	a.broker.FrameDone()
	metrics.RecordFrame(time.Since(start))
}

func (a *App) drawPane(p *pane) {
	r := p.rect
	if r.Empty() {
		return
	}
	style := titleStyle
	if p == a.focus {
		style = style.Reverse()
	}
	a.drawText(r.Left, r.Top, r.Right, a.paneTitle(p), style)

	p.refreshRows()
	p.scrollToCursor()
	for i := 0; i < p.bodyHeight(); i++ {
		idx := p.offset + i
		if idx >= len(p.rows) {
			break
		}
		n := p.rows[idx]
		y := p.bodyTop() + i

		canvas := &cellCanvas{
			out:    a.backend,
			clip:   core.RectFromSize(y, r.Left, 1, r.Right-r.Left),
			clicks: &a.clicks,
		}
		rowStyle := core.DefaultStyle()
		if idx == p.cursor {
			canvas.bg = selectedBG
			rowStyle = rowStyle.WithBackground(selectedBG)
			if p == a.focus {
				rowStyle = rowStyle.Bold()
			}
			a.backend.Fill(canvas.clip, core.NewStyledCell(' ', rowStyle))
		}
		a.drawText(r.Left, y, r.Right-1, rowLabel(p.indent(n), n), rowStyle)

		row := rowRect(r.Left, r.Right, y)
		if p.view == overlay.ViewHierarchy {
			a.renderer.RenderHierarchyItem(n, row, canvas)
		} else {
			a.renderer.RenderProjectItem(n, row, canvas)
		}
	}
}

func (a *App) paneTitle(p *pane) string {
	s := a.store.Settings()
	if p.view == overlay.ViewHierarchy {
		scene := a.CurrentScene()
		if scene == "" {
			scene = "."
		}
		return fmt.Sprintf(" Hierarchy: %s [%s]%s", scene, s.HierarchyMode(), offMark(s.Overlay.HierarchyIcons))
	}
	return fmt.Sprintf(" Project [%s]%s", s.ProjectMode(), offMark(s.Overlay.ProjectIcons))
}

func offMark(on bool) string {
	if on {
		return ""
	}
	return " (icons off)"
}

func rowLabel(indent int, n *tree.Node) string {
	if indent < 0 {
		indent = 0
	}
	marker := "  "
	if n.IsDir() {
		marker = "▸ "
		if n.Expanded() {
			marker = "▾ "
		}
	}
	return " " + strings.Repeat("  ", indent) + marker + n.Name()
}

func (a *App) drawSeparator() {
	x := a.project.rect.Right
	for y := a.project.rect.Top; y < a.project.rect.Bottom; y++ {
		a.backend.SetCell(x, y, core.NewStyledCell('│', dimStyle))
	}
}

// drawStatusLine shows the selection's status on the left and the modes
// and fetch queue on the right.
func (a *App) drawStatusLine() {
	y := a.height - 1
	if y < 0 {
		return
	}
	left := a.message
	if left == "" {
		left = a.selectionStatus()
	}
	s := a.store.Settings()
	right := fmt.Sprintf("project:%s hierarchy:%s pending:%d ", s.ProjectMode(), s.HierarchyMode(), a.fetcher.Pending())
	if !s.Enabled {
		right = "overlay off " + right
	}
	style := core.DefaultStyle().Reverse()
	a.backend.Fill(core.RectFromSize(y, 0, 1, a.width), core.NewStyledCell(' ', style))
	a.drawText(0, y, a.width, " "+left, style)
	a.drawText(a.width-len([]rune(right)), y, a.width, right, style)
}

func (a *App) selectionStatus() string {
	n := a.focus.selected()
	if n == nil {
		return ""
	}
	persistent := a.renderer.Resolver().Resolve(n)
	if persistent == nil {
		return n.Path()
	}
	st := a.fetcher.Status(persistent.AssetPath())
	return n.Path() + "  " + vcs.StatusText(st)
}

// drawMenu draws the context menu as a box in the middle of the screen.
func (a *App) drawMenu() {
	st := a.fetcher.Status(a.menu.path)
	lines := []string{
		a.menu.path,
		vcs.StatusText(st),
		"",
		"r  refresh remote status",
		"l  refresh local status",
		"esc  close",
	}
	w := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > w {
			w = n
		}
	}
	w += 4
	h := len(lines) + 2
	left := (a.width - w) / 2
	top := (a.height - h) / 2
	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}
	box := core.RectFromSize(top, left, h, w)
	a.menu.rect = box

	style := core.DefaultStyle().Reverse()
	a.backend.Fill(box, core.NewStyledCell(' ', style))
	for i, l := range lines {
		a.drawText(left+2, top+1+i, box.Right-1, l, style)
	}
}

// drawText writes text from column x, stopping before column limit.
func (a *App) drawText(x, y, limit int, text string, style core.Style) {
	for _, r := range text {
		if x >= limit {
			return
		}
		a.backend.SetCell(x, y, core.NewStyledCell(r, style))
		x++
	}
}
