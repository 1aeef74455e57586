package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRightAligned(t *testing.T) {
	got := RightAligned(Rect{X: 0, Y: 0, W: 100, H: 20}, 10)

	assert.Equal(t, 10.0, got.W)
	assert.Equal(t, 10.0, got.H)
	assert.Equal(t, 5.0, got.Y)
	// Inset from the right edge by half the vertical border.
	assert.Equal(t, 95.0, got.Right())
	assert.Equal(t, Rect{X: 85, Y: 5, W: 10, H: 10}, got)
	// Vertically centred.
	assert.Equal(t, got.Y, 20-got.Bottom())
}

func TestRightAlignedFullHeight(t *testing.T) {
	got := RightAligned(Rect{X: 10, Y: 40, W: 50, H: 16}, 16)
	assert.Equal(t, Rect{X: 44, Y: 40, W: 16, H: 16}, got)
	assert.Equal(t, 60.0, got.Right())
}

func TestHitRegion(t *testing.T) {
	icon := Rect{X: 85, Y: 5, W: 10, H: 10}
	hit := HitRegion(icon)

	assert.Equal(t, Rect{X: 70, Y: 0, W: 30, H: 20}, hit)
	assert.Equal(t, icon.Right()+5, hit.Right())
	assert.Equal(t, icon.Bottom()+5, hit.Bottom())
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10}
	assert.True(t, r.Contains(0, 0))
	assert.True(t, r.Contains(9.9, 9.9))
	assert.False(t, r.Contains(10, 5))
	assert.False(t, r.Contains(-1, 5))
}

func TestIconSize(t *testing.T) {
	g := NewGeometry(newFakeSettings())

	plain := &fakeItem{path: "a.txt"}
	root := &fakeItem{path: "lib.zip", container: true, root: true}
	member := &fakeItem{path: "lib.zip/x.txt", container: true, owner: root}

	tests := []struct {
		name    string
		item    Item
		isChild bool
		want    float64
	}{
		{"plain", plain, false, 16},
		{"child", plain, true, 8},
		{"container root", root, false, 16},
		{"container member", member, false, 8},
		{"member child halves once", member, true, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.IconSize(tt.item, tt.isChild))
		})
	}
}
