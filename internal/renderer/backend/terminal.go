package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/statusicons/internal/renderer/core"
)

// Terminal is a Backend on a tcell screen. Mouse reporting is on, since
// overlay icons are clickable.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen

	// Buttons held at the last mouse event. Only PollEvent touches it.
	held tcell.ButtonMask
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing screen, e.g. a tcell
// SimulationScreen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse(tcell.MouseButtonEvents)
	t.screen.HideCursor()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(x, y, cell.Rune, nil, toTcellStyle(cell.Style))
}

func (t *Terminal) Fill(rect core.ScreenRect, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	rect.Top, rect.Left = max(rect.Top, 0), max(rect.Left, 0)
	rect.Bottom, rect.Right = min(rect.Bottom, h), min(rect.Right, w)
	style := toTcellStyle(cell.Style)
	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			t.screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

// PollEvent returns the next event the browser cares about. Mouse
// motion, drags and releases are swallowed.
func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{}
		}
		if out, ok := t.convert(ev); ok {
			return out
		}
	}
}

// PostEvent does not take the mutex; tcell's queue is goroutine-safe.
func (t *Terminal) PostEvent(event Event) {
	var ev tcell.Event
	switch event.Type {
	case EventKey:
		ev = tcell.NewEventKey(toTcellKey(event.Key), event.Rune, tcell.ModNone)
	case EventInterrupt:
		ev = tcell.NewEventInterrupt(nil)
	default:
		return
	}
	_ = t.screen.PostEvent(ev)
}

func (t *Terminal) Suspend() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Suspend()
}

func (t *Terminal) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Resume()
}

func (t *Terminal) convert(ev tcell.Event) (Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: fromTcellKey(e.Key()), Rune: e.Rune()}, true
	case *tcell.EventMouse:
		buttons := e.Buttons()
		pressed := buttons &^ t.held
		t.held = buttons &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
		b := mouseButton(pressed)
		if b == MouseNone {
			return Event{}, false
		}
		x, y := e.Position()
		return Event{Type: EventMouse, MouseX: x, MouseY: y, MouseButton: b}, true
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true
	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt}, true
	default:
		return Event{}, false
	}
}

var attrMap = []struct {
	core  core.Attribute
	tcell tcell.AttrMask
}{
	{core.AttrBold, tcell.AttrBold},
	{core.AttrDim, tcell.AttrDim},
	{core.AttrItalic, tcell.AttrItalic},
	{core.AttrUnderline, tcell.AttrUnderline},
	{core.AttrReverse, tcell.AttrReverse},
}

func toTcellStyle(s core.Style) tcell.Style {
	var attrs tcell.AttrMask
	for _, m := range attrMap {
		if s.Attributes.Has(m.core) {
			attrs |= m.tcell
		}
	}
	return tcell.StyleDefault.
		Foreground(toTcellColor(s.Foreground)).
		Background(toTcellColor(s.Background)).
		Attributes(attrs)
}

func toTcellColor(c core.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.IsIndexed():
		return tcell.PaletteColor(int(c.Index()))
	default:
		r, g, b := c.RGB()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
}

var keyMap = map[tcell.Key]Key{
	tcell.KeyRune:   KeyRune,
	tcell.KeyEscape: KeyEscape,
	tcell.KeyEnter:  KeyEnter,
	tcell.KeyTab:    KeyTab,
	tcell.KeyUp:     KeyUp,
	tcell.KeyDown:   KeyDown,
	tcell.KeyLeft:   KeyLeft,
	tcell.KeyRight:  KeyRight,
	tcell.KeyPgUp:   KeyPageUp,
	tcell.KeyPgDn:   KeyPageDown,
	tcell.KeyCtrlC:  KeyCtrlC,
	tcell.KeyCtrlZ:  KeyCtrlZ,
}

func fromTcellKey(k tcell.Key) Key {
	if key, ok := keyMap[k]; ok {
		return key
	}
	return KeyNone
}

func toTcellKey(k Key) tcell.Key {
	for tk, key := range keyMap {
		if key == k {
			return tk
		}
	}
	return tcell.KeyRune
}

// mouseButton picks the button of a press. tcell numbers the middle
// button 2 and the secondary button 3.
func mouseButton(pressed tcell.ButtonMask) MouseButton {
	switch {
	case pressed&tcell.Button1 != 0:
		return MouseLeft
	case pressed&tcell.Button3 != 0:
		return MouseRight
	case pressed&tcell.Button2 != 0:
		return MouseMiddle
	case pressed&tcell.WheelUp != 0:
		return MouseWheelUp
	case pressed&tcell.WheelDown != 0:
		return MouseWheelDown
	default:
		return MouseNone
	}
}

var _ Backend = (*Terminal)(nil)
