// Package backend connects the stage and the pointer input to a display.
// Terminal drives a real terminal through tcell; NullBackend keeps
// everything in memory for tests and headless runs.
package backend

import (
	"sync"

	"github.com/dshills/supermouse/internal/renderer/core"
)

// EventType identifies the kind of Event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventFocus
)

// Event is a terminal event reduced to what the cursor host consumes.
type Event struct {
	Type EventType

	Key  Key
	Rune rune
	Mod  ModMask

	MouseX, MouseY int
	MouseButton    MouseButton

	Width, Height int

	Focused bool
}

// Key is a keyboard key the host binds actions to.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // printable character in Event.Rune
	KeyEscape
	KeyEnter
	KeyCtrlC
	KeyOther
)

// ModMask is a set of held modifier keys.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << (iota - 1)
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether mod is held.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton is the button reported with a mouse event.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// IsWheel reports whether the button is a wheel step rather than a press.
func (b MouseButton) IsWheel() bool {
	return b == MouseWheelUp || b == MouseWheelDown
}

// Surface is the drawing side of a backend, used by the stage.
type Surface interface {
	// Size returns the grid dimensions in cells.
	Size() (width, height int)

	// SetCell paints one cell. Off-grid positions are ignored.
	SetCell(x, y int, cell core.Cell)

	// Clear blanks the whole grid.
	Clear()

	// Show flushes painted cells to the display.
	Show()

	// ShowCursor places the native cursor at x, y and makes it visible.
	ShowCursor(x, y int)

	// HideCursor hides the native cursor.
	HideCursor()
}

// Events is the input side of a backend, used by the pointer source.
type Events interface {
	// PollEvent blocks for the next event. It returns an EventNone event
	// once the backend has shut down.
	PollEvent() Event

	// PostEvent queues a synthetic event without blocking.
	PostEvent(ev Event)

	// HasMouse reports whether the display can report a pointer.
	HasMouse() bool

	// EnableMouse turns on pointer reporting, motion included.
	EnableMouse()

	// DisableMouse turns pointer reporting off.
	DisableMouse()
}

// Backend is a full display: drawable and a source of events.
type Backend interface {
	Surface
	Events

	// Init prepares the display. It must be called before anything else.
	Init() error

	// Shutdown restores the display and unblocks PollEvent.
	Shutdown()
}

// NullBackend is an in-memory Backend.
type NullBackend struct {
	mu       sync.Mutex
	width    int
	height   int
	grid     []core.Cell
	cursorX  int
	cursorY  int
	cursorOn bool
	mouse    bool
	mouseOn  bool
	shows    int

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewNullBackend creates a width×height in-memory backend that reports a
// pointer.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		mouse:  true,
		events: make(chan Event, 128),
		done:   make(chan struct{}),
	}
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid = blankGrid(b.width * b.height)
	return nil
}

func blankGrid(n int) []core.Cell {
	grid := make([]core.Cell, n)
	for i := range grid {
		grid[i] = core.EmptyCell()
	}
	return grid
}

func (b *NullBackend) Shutdown() {
	b.once.Do(func() { close(b.done) })
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// index maps x, y to a grid slot, or -1 when off-grid. Callers hold mu.
func (b *NullBackend) index(x, y int) int {
	if x < 0 || y < 0 || x >= b.width || y >= b.height || len(b.grid) == 0 {
		return -1
	}
	return y*b.width + x
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(x, y); i >= 0 {
		b.grid[i] = cell
	}
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid = blankGrid(b.width * b.height)
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	b.shows++
	b.mu.Unlock()
}

func (b *NullBackend) ShowCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX, b.cursorY, b.cursorOn = x, y, true
}

func (b *NullBackend) HideCursor() {
	b.mu.Lock()
	b.cursorOn = false
	b.mu.Unlock()
}

func (b *NullBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	case <-b.done:
		return Event{}
	}
}

// PostEvent drops the event when the queue is full.
func (b *NullBackend) PostEvent(ev Event) {
	select {
	case b.events <- ev:
	default:
	}
}

func (b *NullBackend) HasMouse() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mouse
}

func (b *NullBackend) EnableMouse() {
	b.mu.Lock()
	b.mouseOn = true
	b.mu.Unlock()
}

func (b *NullBackend) DisableMouse() {
	b.mu.Lock()
	b.mouseOn = false
	b.mu.Unlock()
}

// Resize changes the grid size, clearing it, and queues the matching
// EventResize.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width, b.height = width, height
	b.grid = blankGrid(width * height)
	b.mu.Unlock()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// SetHasMouse changes whether the backend reports a pointer.
func (b *NullBackend) SetHasMouse(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mouse = v
}

// MouseEnabled reports whether EnableMouse was called last.
func (b *NullBackend) MouseEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mouseOn
}

// Cell returns the painted cell at x, y, or an empty cell off-grid.
func (b *NullBackend) Cell(x, y int) core.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(x, y); i >= 0 {
		return b.grid[i]
	}
	return core.EmptyCell()
}

// CursorPosition returns where the native cursor is and whether it shows.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorX, b.cursorY, b.cursorOn
}

// ShowCount returns how many frames were flushed.
func (b *NullBackend) ShowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}

// Row returns row y as text, skipping the padding slots of wide runes.
func (b *NullBackend) Row(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= b.height || len(b.grid) == 0 {
		return ""
	}
	runes := make([]rune, 0, b.width)
	for _, c := range b.grid[y*b.width : (y+1)*b.width] {
		if c.Rune != 0 {
			runes = append(runes, c.Rune)
		}
	}
	return string(runes)
}
