// Package core provides the cell, colour and style types shared by the
// terminal backend and the overlay renderer.
package core

import "fmt"

// Attribute is a set of text attributes.
type Attribute uint8

const (
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
)

// Has reports whether a contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color is a packed terminal colour: the terminal default, a palette
// entry, or a true colour. The zero value is the terminal default.
type Color uint32

const (
	colorRGB     Color = 1 << 24
	colorIndexed Color = 2 << 24
	colorKind    Color = 3 << 24
)

// ColorDefault is the terminal's default colour.
const ColorDefault Color = 0

// Common colours.
var (
	ColorBlack = ColorFromRGB(0, 0, 0)
	ColorWhite = ColorFromRGB(255, 255, 255)
	ColorRed   = ColorFromRGB(255, 0, 0)
	ColorGray  = ColorFromRGB(128, 128, 128)
)

// ColorFromRGB returns a true colour.
func ColorFromRGB(r, g, b uint8) Color {
	return colorRGB | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// ColorFromIndex returns a palette colour.
func ColorFromIndex(index uint8) Color {
	return colorIndexed | Color(index)
}

// IsDefault reports whether c is the terminal default.
func (c Color) IsDefault() bool { return c&colorKind == 0 }

// IsIndexed reports whether c is a palette entry.
func (c Color) IsIndexed() bool { return c&colorKind == colorIndexed }

// RGB returns the components of a true colour.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Index returns the palette index of an indexed colour.
func (c Color) Index() uint8 { return uint8(c) }

// Equals reports whether two colours are the same.
func (c Color) Equals(other Color) bool { return c == other }

func (c Color) String() string {
	switch c & colorKind {
	case 0:
		return "default"
	case colorIndexed:
		return fmt.Sprintf("idx(%d)", c.Index())
	default:
		r, g, b := c.RGB()
		return fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
}

// Blend mixes two true colours; amount 0 keeps c, 1 yields other. Other
// colours cannot be mixed and snap to the nearer side.
func (c Color) Blend(other Color, amount float64) Color {
	if c&colorKind != colorRGB || other&colorKind != colorRGB {
		if amount < 0.5 {
			return c
		}
		return other
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-amount) + float64(b)*amount)
	}
	r1, g1, b1 := c.RGB()
	r2, g2, b2 := other.RGB()
	return ColorFromRGB(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}

// Style is the look of a cell. The zero value is the terminal default.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the terminal default style.
func DefaultStyle() Style { return Style{} }

// NewStyle returns a style with the given foreground.
func NewStyle(fg Color) Style { return Style{Foreground: fg} }

// WithBackground returns s with background bg.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

func (s Style) with(a Attribute) Style {
	s.Attributes |= a
	return s
}

func (s Style) Bold() Style    { return s.with(AttrBold) }
func (s Style) Dim() Style     { return s.with(AttrDim) }
func (s Style) Reverse() Style { return s.with(AttrReverse) }

// Equals reports whether two styles are identical.
func (s Style) Equals(other Style) bool { return s == other }

// Cell is one terminal cell.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell returns a blank cell in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// NewStyledCell returns a cell showing r in style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Style: style}
}

// ScreenRect is a rectangle of cells; Bottom and Right are exclusive.
type ScreenRect struct {
	Top, Left, Bottom, Right int
}

// RectFromSize returns the rectangle at (top, left) with the given size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Empty reports whether r covers no cells.
func (r ScreenRect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Contains reports whether the cell at column x, row y lies in r.
func (r ScreenRect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}
