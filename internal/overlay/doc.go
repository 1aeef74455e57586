// Package overlay draws version-control status icons next to the rows of
// a tree browser and decides when deeper status should be fetched.
//
// The host calls Renderer.RenderProjectItem or Renderer.RenderHierarchyItem
// once per visible row on every redraw. Each call resolves the row to its
// persistent item, asks the Escalator whether a fetch is due, computes the
// icon rect and picks a texture, then registers a click region that opens
// the context menu. Nothing is cached between calls.
//
// A Broker repaints every view when a fetch completes or a setting
// changes. It is the only part of the package that may be entered from a
// goroutine other than the UI loop.
package overlay
