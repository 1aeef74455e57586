package app

import (
	"github.com/dshills/statusicons/internal/overlay"
	"github.com/dshills/statusicons/internal/renderer/backend"
	"github.com/dshills/statusicons/internal/renderer/core"
	"github.com/dshills/statusicons/internal/vcs"
)

// menu is the open version-control context menu.
type menu struct {
	item overlay.Item
	path string
	rect core.ScreenRect
}

// ShowContextMenu implements overlay.ContextMenu.
func (a *App) ShowContextMenu(persistent overlay.Item) {
	if persistent == nil {
		return
	}
	a.menu = &menu{item: persistent, path: persistent.AssetPath()}
	a.requestRedraw()
}

// handleMenuKey runs a menu command. Any key closes the menu.
func (a *App) handleMenuKey(ev backend.Event) {
	m := a.menu
	a.menu = nil
	if ev.Key != backend.KeyRune {
		return
	}
	switch ev.Rune {
	case 'r':
		a.refreshStatus(m.path, vcs.TierRemote)
	case 'l':
		a.refreshStatus(m.path, vcs.TierLocal)
	}
}

// refreshStatus drops the cached status of path and asks for tier again.
func (a *App) refreshStatus(path string, tier vcs.Tier) {
	a.fetcher.Invalidate(a.context(), path)
	a.fetcher.RequestStatus(path, tier)
	a.message = "refreshing " + path
}
