package app

import (
	"math"

	"github.com/dshills/statusicons/internal/overlay"
	"github.com/dshills/statusicons/internal/renderer/core"
)

// Overlay geometry works in units: a terminal row is RowHeight units tall
// and a column CellWidth units wide.
const (
	RowHeight = 20.0
	CellWidth = 10.0
)

// cellWriter is the part of a backend a canvas draws into.
type cellWriter interface {
	SetCell(x, y int, cell core.Cell)
}

type click struct {
	region  overlay.Rect
	tooltip string
	onClick func()
}

// cellCanvas draws overlay textures into terminal cells and collects the
// click regions registered during a frame.
type cellCanvas struct {
	out    cellWriter
	clip   core.ScreenRect
	bg     core.Color
	clicks *[]click
}

// DrawTexture draws one glyph in the cell under the centre of rect. Rects
// narrower than a cell use the small glyph.
func (c *cellCanvas) DrawTexture(rect overlay.Rect, tex overlay.Texture) {
	x := int(math.Floor((rect.X + rect.W/2) / CellWidth))
	y := int(math.Floor((rect.Y + rect.H/2) / RowHeight))
	if !c.clip.Contains(x, y) {
		return
	}
	glyph := tex.Glyph
	if rect.W < CellWidth && tex.Small != 0 {
		glyph = tex.Small
	}
	style := tex.Style
	if !c.bg.IsDefault() {
		style = style.WithBackground(c.bg)
	}
	c.out.SetCell(x, y, core.NewStyledCell(glyph, style))
}

// RegisterClick implements overlay.Canvas.
func (c *cellCanvas) RegisterClick(region overlay.Rect, tooltip string, onClick func()) {
	if c.clicks != nil {
		*c.clicks = append(*c.clicks, click{region: region, tooltip: tooltip, onClick: onClick})
	}
}

// rowRect is the unit rect of screen row y spanning columns [left, right).
func rowRect(left, right, y int) overlay.Rect {
	return overlay.Rect{
		X: float64(left) * CellWidth,
		Y: float64(y) * RowHeight,
		W: float64(right-left) * CellWidth,
		H: RowHeight,
	}
}

// cellCenter returns the unit point at the centre of a cell.
func cellCenter(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * CellWidth, (float64(y) + 0.5) * RowHeight
}

// hit returns the topmost click region under a cell.
func hit(clicks []click, x, y int) (click, bool) {
	ux, uy := cellCenter(x, y)
	for i := len(clicks) - 1; i >= 0; i-- {
		if clicks[i].region.Contains(ux, uy) {
			return clicks[i], true
		}
	}
	return click{}, false
}
