package overlay

import (
	"github.com/dshills/statusicons/internal/vcs"
)

type fakeItem struct {
	path      string
	parent    *fakeItem
	container bool
	root      bool
	owner     *fakeItem
}

func (i *fakeItem) AssetPath() string { return i.path }

func (i *fakeItem) Parent() Item {
	if i.parent == nil {
		return nil
	}
	return i.parent
}

func (i *fakeItem) IsContainer() bool     { return i.container }
func (i *fakeItem) IsContainerRoot() bool { return i.root }

func (i *fakeItem) ContainerOwner() Item {
	if i.owner == nil {
		return nil
	}
	return i.owner
}

type fakeSettings struct {
	enabled        bool
	projectIcons   bool
	hierarchyIcons bool
	projectMode    vcs.Mode
	hierarchyMode  vcs.Mode
	size           float64
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{enabled: true, projectIcons: true, hierarchyIcons: true, size: 16}
}

func (s *fakeSettings) Enabled() bool                     { return s.enabled }
func (s *fakeSettings) ProjectIconsEnabled() bool         { return s.projectIcons }
func (s *fakeSettings) HierarchyIconsEnabled() bool       { return s.hierarchyIcons }
func (s *fakeSettings) ProjectReflectionMode() vcs.Mode   { return s.projectMode }
func (s *fakeSettings) HierarchyReflectionMode() vcs.Mode { return s.hierarchyMode }
func (s *fakeSettings) BaseIconSize() float64             { return s.size }

// fakeCache is a status cache that marks requested entries pending, like
// the real fetcher.
type fakeCache struct {
	entries  map[string]vcs.Status
	lookups  int
	requests []request
	panics   bool
}

type request struct {
	path string
	tier vcs.Tier
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]vcs.Status{}}
}

func (c *fakeCache) set(path string, level vcs.ReflectionLevel, kind vcs.Kind) {
	c.entries[path] = vcs.Status{AssetPath: path, ReflectionLevel: level, Kind: kind}
}

func (c *fakeCache) Status(path string) vcs.Status {
	if c.panics {
		panic("cache exploded")
	}
	c.lookups++
	if st, ok := c.entries[path]; ok {
		return st
	}
	return vcs.Status{}
}

func (c *fakeCache) RequestStatus(path string, tier vcs.Tier) {
	c.requests = append(c.requests, request{path, tier})
	st := c.entries[path]
	st.AssetPath = path
	st.ReflectionLevel = vcs.LevelPending
	c.entries[path] = st
}

// complete simulates a finished fetch for every pending entry, using the
// latest tier requested for it.
func (c *fakeCache) complete() {
	for i := len(c.requests) - 1; i >= 0; i-- {
		r := c.requests[i]
		st := c.entries[r.path]
		if st.ReflectionLevel == vcs.LevelPending {
			st.ReflectionLevel = r.tier.Target()
			c.entries[r.path] = st
		}
	}
}

type drawCall struct {
	rect Rect
	tex  Texture
}

type clickCall struct {
	region  Rect
	tooltip string
	onClick func()
}

type fakeCanvas struct {
	draws  []drawCall
	clicks []clickCall
}

func (c *fakeCanvas) DrawTexture(rect Rect, tex Texture) {
	c.draws = append(c.draws, drawCall{rect, tex})
}

func (c *fakeCanvas) RegisterClick(region Rect, tooltip string, onClick func()) {
	c.clicks = append(c.clicks, clickCall{region, tooltip, onClick})
}

type fakeMenu struct {
	shown []Item
}

func (m *fakeMenu) ShowContextMenu(persistent Item) {
	m.shown = append(m.shown, persistent)
}

type fakeHost struct {
	transient bool
	scene     string
}

func (h *fakeHost) Transient() bool      { return h.transient }
func (h *fakeHost) CurrentScene() string { return h.scene }
