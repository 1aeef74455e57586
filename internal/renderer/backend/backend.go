// Package backend abstracts the terminal the browser draws on. Terminal
// drives a real terminal through tcell; NullBackend keeps cells in memory
// for tests and headless runs.
package backend

import "github.com/dshills/statusicons/internal/renderer/core"

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	// EventInterrupt wakes the event loop; posted by repaint requests
	// arriving from other goroutines.
	EventInterrupt
)

// Event is one terminal event.
type Event struct {
	Type EventType

	Key  Key
	Rune rune // for KeyRune

	// Mouse events report presses only, at cell coordinates.
	MouseX, MouseY int
	MouseButton    MouseButton

	Width, Height int // for EventResize
}

// Key is a key the browser binds.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyCtrlC
	KeyCtrlZ
)

// MouseButton is the button of a mouse press.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Backend is a cell-addressed display with an event queue.
type Backend interface {
	// Init takes over the display. It must be called first.
	Init() error

	// Shutdown restores the display.
	Shutdown()

	Size() (width, height int)

	// SetCell draws one cell. Positions off screen are ignored.
	SetCell(x, y int, cell core.Cell)

	// Fill draws cell over every position of rect that is on screen.
	Fill(rect core.ScreenRect, cell core.Cell)

	Clear()

	// Show makes everything drawn since the last Show visible.
	Show()

	// PollEvent blocks until the next event.
	PollEvent() Event

	// PostEvent queues a synthetic event. Safe from any goroutine; the
	// event is dropped when the queue is full.
	PostEvent(event Event)

	// Suspend hands the terminal back, e.g. for a shell.
	Suspend() error

	// Resume takes the terminal over again after Suspend.
	Resume() error
}
