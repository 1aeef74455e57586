package overlay

import "github.com/dshills/statusicons/internal/vcs"

// Item is a row shown by the host. Implementations must return an untyped
// nil from Parent and ContainerOwner when there is none.
type Item interface {
	// AssetPath is the on-disk path the item stands for. Empty when the
	// item has no asset of its own.
	AssetPath() string

	// Parent is the structural parent in the displayed tree, nil at the
	// top level.
	Parent() Item

	// IsContainer reports whether the item belongs to a container asset,
	// either as its root or as a member.
	IsContainer() bool

	// IsContainerRoot reports whether the item is the container itself.
	IsContainerRoot() bool

	// ContainerOwner returns the container root for members, nil otherwise.
	ContainerOwner() Item
}

// Settings is the read side of the settings store. Values are read on
// every call and never cached.
type Settings interface {
	Enabled() bool
	ProjectIconsEnabled() bool
	HierarchyIconsEnabled() bool
	ProjectReflectionMode() vcs.Mode
	HierarchyReflectionMode() vcs.Mode
	BaseIconSize() float64
}

// StatusSource is the read-only status cache.
type StatusSource interface {
	Status(assetPath string) vcs.Status
}

// Requester triggers a fetch without waiting for it.
type Requester interface {
	RequestStatus(assetPath string, tier vcs.Tier)
}

// Canvas is the host's drawing surface for one view.
type Canvas interface {
	DrawTexture(rect Rect, tex Texture)

	// RegisterClick makes region clickable until the next redraw.
	RegisterClick(region Rect, tooltip string, onClick func())
}

// ContextMenu opens the version-control menu for a persistent item.
type ContextMenu interface {
	ShowContextMenu(persistent Item)
}

// Host exposes editor state the renderer checks before drawing.
type Host interface {
	// Transient reports a non-editable mode in which overlays are hidden.
	Transient() bool

	// CurrentScene is the asset path of the composition shown in the
	// hierarchy view. Hierarchy items owned by it are not decorated.
	CurrentScene() string
}

// Repainter schedules a redraw of one view.
type Repainter interface {
	Repaint()
}

// RepainterFunc adapts a function to Repainter.
type RepainterFunc func()

// Repaint implements Repainter.
func (f RepainterFunc) Repaint() {
	f()
}
