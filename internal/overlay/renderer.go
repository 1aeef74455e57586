package overlay

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/metrics"
	"github.com/dshills/statusicons/internal/vcs"
)

// View identifies which browser view is being drawn.
type View int

const (
	ViewProject View = iota
	ViewHierarchy
)

// String returns the view name.
func (v View) String() string {
	if v == ViewHierarchy {
		return "hierarchy"
	}
	return "project"
}

// State is how far one item got through a render pass.
type State int

const (
	StateSkipped State = iota
	StateResolved
	StateEscalated
	StateDrawn
	StateInteractive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateResolved:
		return "resolved"
	case StateEscalated:
		return "escalated"
	case StateDrawn:
		return "drawn"
	case StateInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// Config holds the renderer's collaborators. Settings, Statuses and
// Requester are required.
type Config struct {
	Settings  Settings
	Statuses  StatusSource
	Requester Requester

	// Resolver maps items to persistent items. Nil means identity.
	Resolver OwnerResolver

	// Palette and Textures default to DefaultPalette and GlyphTextures.
	Palette  Palette
	Textures TextureSource

	// Menu is opened when an icon is clicked. Nil leaves icons inert.
	Menu ContextMenu

	// Host reports transient mode and the current scene. Nil means
	// never transient, no scene.
	Host Host

	Logger *zap.Logger
}

// Renderer composes resolution, escalation, geometry and icon selection
// for one row at a time. It must only be used from the UI goroutine.
type Renderer struct {
	settings  Settings
	statuses  StatusSource
	resolver  *Resolver
	escalator *Escalator
	geometry  Geometry
	icons     *IconSelector
	textures  TextureSource
	menu      ContextMenu
	host      Host
	log       *zap.Logger

	missingMu sync.Mutex
	missing   map[string]struct{}
}

// NewRenderer creates a Renderer.
func NewRenderer(cfg Config) *Renderer {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	textures := cfg.Textures
	if textures == nil {
		textures = GlyphTextures{}
	}
	return &Renderer{
		settings:  cfg.Settings,
		statuses:  cfg.Statuses,
		resolver:  NewResolver(cfg.Resolver),
		escalator: NewEscalator(cfg.Settings, cfg.Statuses, cfg.Requester, log),
		geometry:  NewGeometry(cfg.Settings),
		icons:     NewIconSelector(cfg.Palette),
		textures:  textures,
		menu:      cfg.Menu,
		host:      cfg.Host,
		log:       log,
		missing:   make(map[string]struct{}),
	}
}

// SetPersistentOwnerResolver replaces how items map to persistent items.
// Nil restores identity.
func (r *Renderer) SetPersistentOwnerResolver(strategy OwnerResolver) {
	r.resolver.SetPersistentOwnerResolver(strategy)
}

// Resolver returns the relationship resolver in use.
func (r *Renderer) Resolver() *Resolver {
	return r.resolver
}

// RenderProjectItem decorates one project view row.
func (r *Renderer) RenderProjectItem(item Item, row Rect, c Canvas) State {
	return r.render(ViewProject, item, row, c)
}

// RenderHierarchyItem decorates one hierarchy view row. Items owned by
// the current scene are skipped.
func (r *Renderer) RenderHierarchyItem(item Item, row Rect, c Canvas) State {
	return r.render(ViewHierarchy, item, row, c)
}

func (r *Renderer) render(view View, item Item, row Rect, c Canvas) (state State) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("overlay render panicked",
				zap.Stringer("view", view),
				zap.String("item", safePath(item)),
				zap.String("panic", fmt.Sprint(rec)))
			state = StateSkipped
		}
		metrics.RecordRender(view.String(), state.String())
	}()

	if !r.active(view) {
		return StateSkipped
	}
	if item == nil {
		return StateSkipped
	}

	persistent := r.resolver.Resolve(item)
	if persistent == nil {
		r.log.Debug("unresolved item", zap.Stringer("view", view), zap.String("item", item.AssetPath()))
		return StateSkipped
	}
	if view == ViewHierarchy && r.host != nil && persistent.AssetPath() == r.host.CurrentScene() {
		return StateSkipped
	}
	state = StateResolved

	r.escalator.MaybeEscalate(persistent, r.mode(view))
	state = StateEscalated

	st := r.statuses.Status(persistent.AssetPath())
	if st.IsEmpty() {
		r.logMissing(item, persistent)
	}

	size := r.geometry.IconSize(item, r.resolver.IsChild(item))
	rect := RightAligned(row, size)
	icon := r.icons.SelectIcon(st, persistent.IsContainer())
	if tex, ok := r.textures.Texture(icon); ok {
		c.DrawTexture(rect, tex)
	}
	state = StateDrawn

	if r.menu != nil {
		menu := r.menu
		c.RegisterClick(HitRegion(rect), vcs.StatusText(st), func() {
			menu.ShowContextMenu(persistent)
		})
		state = StateInteractive
	}
	return state
}

// active checks the entry guard: feature on, host editable, view toggle on.
func (r *Renderer) active(view View) bool {
	if !r.settings.Enabled() {
		return false
	}
	if r.host != nil && r.host.Transient() {
		return false
	}
	if view == ViewHierarchy {
		return r.settings.HierarchyIconsEnabled()
	}
	return r.settings.ProjectIconsEnabled()
}

func (r *Renderer) mode(view View) vcs.Mode {
	if view == ViewHierarchy {
		return r.settings.HierarchyReflectionMode()
	}
	return r.settings.ProjectReflectionMode()
}

// maxMissing bounds the set of paths already reported as missing. When
// it fills up, the set starts over.
const maxMissing = 4096

// ForgetMissing clears the paths already reported as missing status data,
// so they are logged again. Hosts call it when a view's tree is rebuilt.
func (r *Renderer) ForgetMissing() {
	r.missingMu.Lock()
	clear(r.missing)
	r.missingMu.Unlock()
}

// logMissing logs an empty status once per item path.
func (r *Renderer) logMissing(item, persistent Item) {
	key := item.AssetPath()
	r.missingMu.Lock()
	_, seen := r.missing[key]
	if !seen {
		if len(r.missing) >= maxMissing {
			clear(r.missing)
		}
		r.missing[key] = struct{}{}
	}
	r.missingMu.Unlock()
	if seen {
		return
	}
	r.log.Info("missing status data",
		zap.String("item", key),
		zap.String("persistent", persistent.AssetPath()))
}

func safePath(item Item) (path string) {
	defer func() {
		if recover() != nil {
			path = "<unknown>"
		}
	}()
	if item == nil {
		return ""
	}
	return item.AssetPath()
}
