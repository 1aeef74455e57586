package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/statusicons/internal/vcs"
)

func TestMaybeEscalate(t *testing.T) {
	tests := []struct {
		name  string
		mode  vcs.Mode
		level vcs.ReflectionLevel
		want  []vcs.Tier
	}{
		{"remote from none", vcs.ModeRemote, vcs.LevelNone, []vcs.Tier{vcs.TierRemote}},
		{"remote from local", vcs.ModeRemote, vcs.LevelPrevious, []vcs.Tier{vcs.TierRemote}},
		{"remote while pending", vcs.ModeRemote, vcs.LevelPending, nil},
		{"remote satisfied", vcs.ModeRemote, vcs.LevelRepository, nil},
		{"local from none", vcs.ModeLocal, vcs.LevelNone, []vcs.Tier{vcs.TierLocal}},
		{"local while pending", vcs.ModeLocal, vcs.LevelPending, nil},
		{"local satisfied", vcs.ModeLocal, vcs.LevelPrevious, nil},
		{"local never regresses", vcs.ModeLocal, vcs.LevelRepository, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newFakeCache()
			cache.set("a.txt", tt.level, vcs.KindNormal)
			e := NewEscalator(newFakeSettings(), cache, cache, nil)

			e.MaybeEscalate(&fakeItem{path: "a.txt"}, tt.mode)

			var got []vcs.Tier
			for _, r := range cache.requests {
				assert.Equal(t, "a.txt", r.path)
				got = append(got, r.tier)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaybeEscalateDisabled(t *testing.T) {
	cache := newFakeCache()
	settings := newFakeSettings()
	settings.enabled = false
	e := NewEscalator(settings, cache, cache, nil)

	e.MaybeEscalate(&fakeItem{path: "a.txt"}, vcs.ModeRemote)
	assert.Empty(t, cache.requests)
	assert.Zero(t, cache.lookups)
}

func TestMaybeEscalateRequestKey(t *testing.T) {
	cache := newFakeCache()
	e := NewEscalator(newFakeSettings(), cache, cache, nil)

	// Unknown sentinel falls back to the item's own path.
	e.MaybeEscalate(&fakeItem{path: "new.txt"}, vcs.ModeLocal)
	require.Len(t, cache.requests, 1)
	assert.Equal(t, "new.txt", cache.requests[0].path)

	// Nothing to request for a pathless item.
	e.MaybeEscalate(&fakeItem{}, vcs.ModeRemote)
	assert.Len(t, cache.requests, 1)

	e.MaybeEscalate(nil, vcs.ModeRemote)
	assert.Len(t, cache.requests, 1)
}

func TestEscalationNoRedundantRequests(t *testing.T) {
	cache := newFakeCache()
	e := NewEscalator(newFakeSettings(), cache, cache, nil)
	item := &fakeItem{path: "a.txt"}

	for i := 0; i < 5; i++ {
		e.MaybeEscalate(item, vcs.ModeRemote)
	}
	assert.Len(t, cache.requests, 1)
	assert.Equal(t, vcs.LevelPending, cache.entries["a.txt"].ReflectionLevel)
}

func TestEscalationMonotonic(t *testing.T) {
	cache := newFakeCache()
	e := NewEscalator(newFakeSettings(), cache, cache, nil)
	item := &fakeItem{path: "a.txt"}

	var levels []vcs.ReflectionLevel
	observe := func() { levels = append(levels, cache.Status("a.txt").ReflectionLevel) }

	// Local view first, then the same asset shown in a remote view.
	e.MaybeEscalate(item, vcs.ModeLocal)
	observe()
	cache.complete()
	observe()
	e.MaybeEscalate(item, vcs.ModeLocal)
	observe()
	e.MaybeEscalate(item, vcs.ModeRemote)
	observe()
	cache.complete()
	observe()
	e.MaybeEscalate(item, vcs.ModeRemote)
	e.MaybeEscalate(item, vcs.ModeLocal)
	observe()

	assert.Equal(t, []vcs.ReflectionLevel{
		vcs.LevelPending,
		vcs.LevelPrevious,
		vcs.LevelPrevious,
		vcs.LevelPending,
		vcs.LevelRepository,
		vcs.LevelRepository,
	}, levels)
	assert.Len(t, cache.requests, 2)

	completed := []vcs.ReflectionLevel{levels[1], levels[2], levels[4], levels[5]}
	for i := 1; i < len(completed); i++ {
		assert.GreaterOrEqual(t, completed[i], completed[i-1])
	}
}

func TestEscalationRetriesAfterFailure(t *testing.T) {
	cache := newFakeCache()
	e := NewEscalator(newFakeSettings(), cache, cache, nil)
	item := &fakeItem{path: "a.txt"}

	e.MaybeEscalate(item, vcs.ModeRemote)
	// The fetch subsystem resets a failed entry to None.
	cache.set("a.txt", vcs.LevelNone, vcs.KindUnknown)
	e.MaybeEscalate(item, vcs.ModeRemote)

	assert.Len(t, cache.requests, 2)
}
