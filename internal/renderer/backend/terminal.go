package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/supermouse/internal/renderer/core"
)

// Terminal is a Backend on top of a tcell screen.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	mouse  tcell.MouseFlags
	focus  bool
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithScreen draws on s instead of the process terminal. Tests pass a
// tcell.NewSimulationScreen here.
func WithScreen(s tcell.Screen) TerminalOption {
	return func(t *Terminal) {
		t.screen = s
	}
}

// WithMouseFlags overrides which pointer reports are requested. Motion
// reporting is on by default so the cursor follows the pointer with no
// button held.
func WithMouseFlags(flags tcell.MouseFlags) TerminalOption {
	return func(t *Terminal) {
		t.mouse = flags
	}
}

// WithoutFocus stops the terminal from reporting focus changes.
func WithoutFocus() TerminalOption {
	return func(t *Terminal) {
		t.focus = false
	}
}

// NewTerminal creates a terminal backend. Init must be called before use.
func NewTerminal(opts ...TerminalOption) (*Terminal, error) {
	t := &Terminal{mouse: tcell.MouseMotionEvents, focus: true}
	for _, opt := range opts {
		opt(t)
	}
	if t.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		t.screen = s
	}
	return t, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse(t.mouse)
	if t.focus {
		t.screen.EnableFocus()
	}
	t.screen.HideCursor()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.DisableMouse()
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	if cell.Width == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(x, y, cell.Rune, nil, tcellStyle(cell.Style))
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

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.HideCursor()
}

// PollEvent is not locked: it blocks inside tcell until an event arrives
// or the screen is finalized.
func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{}
		}
		if out, ok := fromTcell(ev); ok {
			return out
		}
	}
}

// PostEvent can synthesize key and resize events. Other types are
// dropped, as is anything posted to a full queue.
func (t *Terminal) PostEvent(ev Event) {
	var tev tcell.Event
	switch ev.Type {
	case EventKey:
		tev = tcell.NewEventKey(tcellKeys[ev.Key], ev.Rune, tcell.ModNone)
	case EventResize:
		tev = tcell.NewEventResize(ev.Width, ev.Height)
	default:
		return
	}
	_ = t.screen.PostEvent(tev)
}

func (t *Terminal) HasMouse() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.HasMouse()
}

func (t *Terminal) EnableMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.EnableMouse(t.mouse)
}

func (t *Terminal) DisableMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.DisableMouse()
}

var attrTable = []struct {
	ours  core.Attribute
	tcell tcell.AttrMask
}{
	{core.AttrBold, tcell.AttrBold},
	{core.AttrDim, tcell.AttrDim},
	{core.AttrReverse, tcell.AttrReverse},
	{core.AttrUnderline, tcell.AttrUnderline},
}

func tcellStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(tcellColor(s.Foreground)).
		Background(tcellColor(s.Background))
	var attrs tcell.AttrMask
	for _, a := range attrTable {
		if s.Attributes.Has(a.ours) {
			attrs |= a.tcell
		}
	}
	return style.Attributes(attrs)
}

func tcellColor(c core.Color) tcell.Color {
	if c.IsDefault() {
		return tcell.ColorDefault
	}
	if i, ok := c.Index(); ok {
		return tcell.PaletteColor(int(i))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

var (
	keysFromTcell = map[tcell.Key]Key{
		tcell.KeyRune:   KeyRune,
		tcell.KeyEscape: KeyEscape,
		tcell.KeyEnter:  KeyEnter,
		tcell.KeyCtrlC:  KeyCtrlC,
	}
	tcellKeys = map[Key]tcell.Key{
		KeyNone:   tcell.KeyRune,
		KeyRune:   tcell.KeyRune,
		KeyEscape: tcell.KeyEscape,
		KeyEnter:  tcell.KeyEnter,
		KeyCtrlC:  tcell.KeyCtrlC,
		KeyOther:  tcell.KeyRune,
	}
	modsFromTcell = []struct {
		tcell tcell.ModMask
		ours  ModMask
	}{
		{tcell.ModShift, ModShift},
		{tcell.ModCtrl, ModCtrl},
		{tcell.ModAlt, ModAlt},
		{tcell.ModMeta, ModMeta},
	}
	// Checked in order so a press wins over a simultaneous wheel step.
	buttonsFromTcell = []struct {
		tcell tcell.ButtonMask
		ours  MouseButton
	}{
		{tcell.Button1, MouseLeft},
		{tcell.Button3, MouseMiddle},
		{tcell.Button2, MouseRight},
		{tcell.WheelUp, MouseWheelUp},
		{tcell.WheelDown, MouseWheelDown},
	}
)

// fromTcell converts ev, reporting false for event kinds the host ignores.
func fromTcell(ev tcell.Event) (Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:        EventMouse,
			MouseX:      x,
			MouseY:      y,
			MouseButton: buttonOf(e.Buttons()),
			Mod:         modsOf(e.Modifiers()),
		}, true
	case *tcell.EventKey:
		key, ok := keysFromTcell[e.Key()]
		if !ok {
			key = KeyOther
		}
		return Event{Type: EventKey, Key: key, Rune: e.Rune(), Mod: modsOf(e.Modifiers())}, true
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true
	case *tcell.EventFocus:
		return Event{Type: EventFocus, Focused: e.Focused}, true
	}
	return Event{}, false
}

func modsOf(m tcell.ModMask) ModMask {
	out := ModNone
	for _, mod := range modsFromTcell {
		if m&mod.tcell != 0 {
			out |= mod.ours
		}
	}
	return out
}

func buttonOf(b tcell.ButtonMask) MouseButton {
	for _, btn := range buttonsFromTcell {
		if b&btn.tcell != 0 {
			return btn.ours
		}
	}
	return MouseNone
}
