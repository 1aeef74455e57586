package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/statusicons/internal/renderer/core"
	"github.com/dshills/statusicons/internal/vcs"
)

func TestSelectIconContainerPrecedence(t *testing.T) {
	s := NewIconSelector(nil)

	modified := vcs.Status{AssetPath: "a", ReflectionLevel: vcs.LevelPrevious, Kind: vcs.KindModified}
	added := vcs.Status{AssetPath: "a", ReflectionLevel: vcs.LevelPrevious, Kind: vcs.KindAdded}
	conflicted := vcs.Status{AssetPath: "a", ReflectionLevel: vcs.LevelPrevious, Kind: vcs.KindConflicted}

	m := s.SelectIcon(modified, true)
	a := s.SelectIcon(added, true)
	c := s.SelectIcon(conflicted, true)

	assert.Equal(t, CategoryContainer, m.Category)
	assert.Equal(t, CategoryContainer, a.Category)
	assert.Equal(t, CategoryContainer, c.Category)
	assert.False(t, m.Color.Equals(a.Color))

	assert.Equal(t, CategoryDefault, s.SelectIcon(modified, false).Category)
}

func TestSelectIconEmptyStatusDeterministic(t *testing.T) {
	s := NewIconSelector(nil)
	first := s.SelectIcon(vcs.Status{}, false)
	second := s.SelectIcon(vcs.Status{}, false)

	assert.Equal(t, first, second)
	assert.Equal(t, CategoryDefault, first.Category)
	assert.True(t, first.Color.Equals(ColorUnknown))
}

type shortPalette struct {
	shorts []bool
}

func (p *shortPalette) StatusColor(_ vcs.Status, short bool) core.Color {
	p.shorts = append(p.shorts, short)
	return core.ColorWhite
}

func TestSelectIconUsesShortForm(t *testing.T) {
	p := &shortPalette{}
	NewIconSelector(p).SelectIcon(vcs.Status{AssetPath: "a"}, false)
	assert.Equal(t, []bool{true}, p.shorts)
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette{}
	st := func(level vcs.ReflectionLevel, kind vcs.Kind, outOfDate bool) vcs.Status {
		return vcs.Status{AssetPath: "a", ReflectionLevel: level, Kind: kind, OutOfDate: outOfDate}
	}

	assert.True(t, p.StatusColor(st(vcs.LevelPrevious, vcs.KindModified, false), true).Equals(ColorModified))
	assert.True(t, p.StatusColor(st(vcs.LevelRepository, vcs.KindNormal, true), true).Equals(ColorOutOfDate))
	// Out of date only counts once the remote tier is known.
	assert.True(t, p.StatusColor(st(vcs.LevelPrevious, vcs.KindNormal, true), true).Equals(ColorNormal))
	assert.True(t, p.StatusColor(st(vcs.LevelRepository, vcs.KindConflicted, true), true).Equals(ColorConflicted))
	assert.False(t, p.StatusColor(st(vcs.LevelPrevious, vcs.KindAdded, false), false).Equals(ColorAdded))
}

func TestGlyphTextures(t *testing.T) {
	tex, ok := GlyphTextures{}.Texture(Icon{Category: CategoryContainer, Color: ColorAdded})
	assert.True(t, ok)
	assert.Equal(t, '■', tex.Glyph)
	assert.True(t, tex.Style.Foreground.Equals(ColorAdded))

	tex, _ = GlyphTextures{}.Texture(Icon{Category: CategoryDefault})
	assert.Equal(t, '◆', tex.Glyph)
}
