package overlay

import (
	"github.com/dshills/statusicons/internal/renderer/core"
	"github.com/dshills/statusicons/internal/vcs"
)

// Category is the icon shape.
type Category int

const (
	// CategoryDefault marks assets whose changes are tracked on the item.
	CategoryDefault Category = iota
	// CategoryContainer marks items whose changes are stored in a
	// container asset.
	CategoryContainer
)

// String returns the category name.
func (c Category) String() string {
	if c == CategoryContainer {
		return "container"
	}
	return "default"
}

// Icon is what the selector decided to draw.
type Icon struct {
	Category Category
	Color    core.Color
}

// Palette maps a status to a colour. Short form is the compact badge
// colour; long form is used next to status text.
type Palette interface {
	StatusColor(st vcs.Status, short bool) core.Color
}

// Status colours of DefaultPalette.
var (
	ColorUnknown     = core.ColorFromRGB(0x80, 0x80, 0x80)
	ColorNormal      = core.ColorFromRGB(0x4C, 0xAF, 0x50)
	ColorUnversioned = core.ColorFromRGB(0x5C, 0x6B, 0xC0)
	ColorAdded       = core.ColorFromRGB(0x26, 0xC6, 0xDA)
	ColorModified    = core.ColorFromRGB(0xFF, 0xB3, 0x00)
	ColorDeleted     = core.ColorFromRGB(0xC6, 0x28, 0x28)
	ColorConflicted  = core.ColorFromRGB(0xFF, 0x17, 0x44)
	ColorIgnored     = core.ColorFromRGB(0x60, 0x60, 0x60)
	ColorOutOfDate   = core.ColorFromRGB(0xAB, 0x47, 0xBC)
)

// DefaultPalette is the built-in status colour table.
type DefaultPalette struct{}

// StatusColor implements Palette.
func (DefaultPalette) StatusColor(st vcs.Status, short bool) core.Color {
	c := baseColor(st)
	if !short {
		c = c.Blend(core.ColorWhite, 0.3)
	}
	return c
}

func baseColor(st vcs.Status) core.Color {
	if st.IsEmpty() {
		return ColorUnknown
	}
	if st.Kind == vcs.KindConflicted {
		return ColorConflicted
	}
	if st.ReflectionLevel == vcs.LevelRepository && st.OutOfDate {
		return ColorOutOfDate
	}
	switch st.Kind {
	case vcs.KindNormal:
		return ColorNormal
	case vcs.KindUnversioned:
		return ColorUnversioned
	case vcs.KindAdded:
		return ColorAdded
	case vcs.KindModified, vcs.KindRenamed:
		return ColorModified
	case vcs.KindDeleted:
		return ColorDeleted
	case vcs.KindIgnored:
		return ColorIgnored
	default:
		return ColorUnknown
	}
}

// IconSelector picks icon shape and colour for a status.
type IconSelector struct {
	palette Palette
}

// NewIconSelector creates a selector. A nil palette uses DefaultPalette.
func NewIconSelector(p Palette) *IconSelector {
	if p == nil {
		p = DefaultPalette{}
	}
	return &IconSelector{palette: p}
}

// SelectIcon returns the container shape whenever changes live in a
// container, whatever the status kind; colour always follows the status.
// An empty status still yields a fixed icon.
func (s *IconSelector) SelectIcon(st vcs.Status, changesStoredInContainer bool) Icon {
	cat := CategoryDefault
	if changesStoredInContainer {
		cat = CategoryContainer
	}
	return Icon{Category: cat, Color: s.palette.StatusColor(st, true)}
}

// Texture is a drawable icon. Terminal canvases draw Glyph, or Small when
// the target rect is under a cell.
type Texture struct {
	Glyph rune
	Small rune
	Style core.Style
}

// TextureSource turns an icon into a texture. ok is false when nothing
// should be drawn.
type TextureSource interface {
	Texture(icon Icon) (tex Texture, ok bool)
}

// GlyphTextures renders icons as Unicode glyphs.
type GlyphTextures struct{}

// Texture implements TextureSource.
func (GlyphTextures) Texture(icon Icon) (Texture, bool) {
	tex := Texture{Glyph: '◆', Small: '•', Style: core.NewStyle(icon.Color)}
	if icon.Category == CategoryContainer {
		tex.Glyph, tex.Small = '■', '▪'
	}
	return tex, true
}
