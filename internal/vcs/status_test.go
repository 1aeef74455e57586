package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectionLevelOrder(t *testing.T) {
	assert.Less(t, LevelNone, LevelPending)
	assert.Less(t, LevelPending, LevelPrevious)
	assert.Less(t, LevelPrevious, LevelRepository)
	assert.Equal(t, LevelPrevious, TierLocal.Target())
	assert.Equal(t, LevelRepository, TierRemote.Target())
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name string
		st   Status
		want string
	}{
		{"empty", Status{}, "no status"},
		{"none", Status{AssetPath: "a", ReflectionLevel: LevelNone}, "not fetched"},
		{"first fetch", Status{AssetPath: "a", ReflectionLevel: LevelPending}, "fetching"},
		{"local", Status{AssetPath: "a", ReflectionLevel: LevelPrevious, Kind: KindModified, Staged: true}, "modified, staged"},
		{"local ignores out of date", Status{AssetPath: "a", ReflectionLevel: LevelPrevious, Kind: KindNormal, OutOfDate: true}, "normal"},
		{"remote", Status{AssetPath: "a", ReflectionLevel: LevelRepository, Kind: KindNormal, OutOfDate: true}, "normal, out of date"},
		{"refresh", Status{AssetPath: "a", ReflectionLevel: LevelPending, Kind: KindAdded}, "added, refreshing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.st))
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Remote")
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, m)

	m, err = ParseMode(" local ")
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, m)

	_, err = ParseMode("cloud")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
