package overlay

// Rect is an axis-aligned rectangle in the host's row units.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// RightAligned returns a size×size square vertically centred in row and
// inset from its right edge by half the leftover vertical border. The
// square is not flush with the edge: for a 100×20 row and size 10 it
// spans x 85 to 95.
func RightAligned(row Rect, size float64) Rect {
	border := row.H - size
	return Rect{
		X: row.X + row.W - border/2 - size,
		Y: row.Y + border/2,
		W: size,
		H: size,
	}
}

// Hit region padding around a drawn icon.
const (
	hitPadLeft   = 15
	hitPadTop    = 5
	hitPadRight  = 5
	hitPadBottom = 5
)

// HitRegion grows an icon rect into its click target, mostly to the left
// where the row label sits.
func HitRegion(icon Rect) Rect {
	return Rect{
		X: icon.X - hitPadLeft,
		Y: icon.Y - hitPadTop,
		W: icon.W + hitPadLeft + hitPadRight,
		H: icon.H + hitPadTop + hitPadBottom,
	}
}

// Geometry sizes icons from the configured base size.
type Geometry struct {
	settings Settings
}

// NewGeometry creates a Geometry reading the base size from settings.
func NewGeometry(settings Settings) Geometry {
	return Geometry{settings: settings}
}

// IconSize returns the icon side for item. Children, and container members
// other than the root, get half the base size.
func (g Geometry) IconSize(item Item, isChild bool) float64 {
	size := g.settings.BaseIconSize()
	if isChild || (item != nil && item.IsContainer() && !item.IsContainerRoot()) {
		size *= 0.5
	}
	return size
}
