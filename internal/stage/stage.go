// Package stage owns the surface the cursor is drawn on: the scene, the
// overlay layer plugins render into, the set of hover selectors and the
// native cursor mode.
package stage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/supermouse/internal/renderer/backend"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/scene"
)

// ErrNoContainer is returned when the stage has no backend or scene to
// attach to.
var ErrNoContainer = errors.New("stage: no container")

// ErrDestroyed is returned by operations on a destroyed stage.
var ErrDestroyed = errors.New("stage: destroyed")

// IgnoreAttr marks an element, and everything inside it, as native.
const IgnoreAttr = "supermouse-ignore"

// NativeMode controls the terminal's own cursor.
type NativeMode int

const (
	// NativeAuto leaves the native cursor visible at the pointer.
	NativeAuto NativeMode = iota
	// NativeHidden hides the native cursor.
	NativeHidden
)

// String returns the mode name.
func (m NativeMode) String() string {
	if m == NativeHidden {
		return "hidden"
	}
	return "auto"
}

// Options configures a Stage.
type Options struct {
	// HoverSelectors are registered at construction.
	HoverSelectors []string

	// NativeSelectors mark elements over which the native cursor is used.
	NativeSelectors []string

	// SceneStyle draws element outlines.
	SceneStyle core.Style

	// LabelStyle draws element labels.
	LabelStyle core.Style
}

// DefaultOptions returns the default stage options.
func DefaultOptions() Options {
	return Options{
		HoverSelectors: []string{"a", "button", "[supermouse-stick]", "[supermouse-magnetic]", "[supermouse-state]"},
		SceneStyle:     core.NewStyle(core.ColorGray),
		LabelStyle:     core.NewStyle(core.ColorWhite),
	}
}

type namedSelector struct {
	pattern string
	sel     scene.Selector
}

// Stage composes the scene and overlay onto a backend.
// It is safe for concurrent use.
type Stage struct {
	mu sync.RWMutex

	backend backend.Surface
	scene   *scene.Scene
	opts    Options

	hover  []namedSelector
	native []namedSelector

	layer     *Layer
	visible   bool
	mode      NativeMode
	destroyed bool
}

// New creates a stage over b and sc.
func New(b backend.Surface, sc *scene.Scene, opts Options) (*Stage, error) {
	if b == nil || sc == nil {
		return nil, ErrNoContainer
	}
	w, h := b.Size()
	s := &Stage{
		backend: b,
		scene:   sc,
		opts:    opts,
		layer:   newLayer(w, h),
		mode:    NativeAuto,
	}
	for _, p := range opts.HoverSelectors {
		if err := s.AddSelector(p); err != nil {
			return nil, err
		}
	}
	for _, p := range opts.NativeSelectors {
		if err := s.AddNativeSelector(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Scene returns the scene the stage presents.
func (s *Stage) Scene() *scene.Scene {
	return s.scene
}

// Size returns the stage dimensions in cells.
func (s *Stage) Size() (width, height int) {
	return s.backend.Size()
}

// AddSelector registers a hover selector. Registering a pattern that is
// already present is a no-op.
func (s *Stage) AddSelector(pattern string) error {
	return s.addTo(&s.hover, pattern)
}

// AddNativeSelector registers a selector for native-cursor regions.
func (s *Stage) AddNativeSelector(pattern string) error {
	return s.addTo(&s.native, pattern)
}

func (s *Stage) addTo(list *[]namedSelector, pattern string) error {
	sel, err := scene.ParseSelector(pattern)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrDestroyed
	}
	for _, ns := range *list {
		if ns.pattern == sel.String() {
			return nil
		}
	}
	*list = append(*list, namedSelector{pattern: sel.String(), sel: sel})
	return nil
}

// Selectors returns the registered hover selector patterns.
func (s *Stage) Selectors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.hover))
	for i, ns := range s.hover {
		out[i] = ns.pattern
	}
	return out
}

// Resolve hit-tests the cell (x, y). hover is the closest element, from
// the topmost hit outward, matching a hover selector. native reports
// whether the point lies in a region that keeps the native cursor.
func (s *Stage) Resolve(x, y int) (hover *scene.Element, native bool) {
	hit := s.scene.HitTest(x, y)
	if hit == nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hover = hit.Closest(func(el *scene.Element) bool {
		return matchAny(s.hover, el)
	})
	native = hit.Closest(func(el *scene.Element) bool {
		if _, ok := el.Attr(IgnoreAttr); ok {
			return true
		}
		return matchAny(s.native, el)
	}) != nil
	return hover, native
}

func matchAny(list []namedSelector, el *scene.Element) bool {
	for _, ns := range list {
		if ns.sel.Match(el) {
			return true
		}
	}
	return false
}

// SetVisibility shows or hides the overlay layer.
func (s *Stage) SetVisibility(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
}

// Visible reports whether the overlay is shown.
func (s *Stage) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// SetNativeCursor sets the native cursor mode.
func (s *Stage) SetNativeCursor(mode NativeMode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
}

// NativeCursor returns the native cursor mode.
func (s *Stage) NativeCursor() NativeMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Layer returns the overlay layer. Plugins draw into it during a frame;
// it is not synchronized and must only be used from the frame loop.
func (s *Stage) Layer() *Layer {
	return s.layer
}

// BeginFrame clears the overlay and tracks backend resizes.
func (s *Stage) BeginFrame() {
	w, h := s.backend.Size()
	s.layer.resize(w, h)
	s.layer.Clear()
}

// Render composes the scene, the overlay when visible, and the native
// cursor at (cursorX, cursorY) when the native mode is auto.
func (s *Stage) Render(cursorX, cursorY int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return ErrDestroyed
	}

	s.backend.Clear()
	s.scene.Walk(s.drawElement)

	if s.visible {
		s.layer.each(func(x, y int, c core.Cell) {
			s.backend.SetCell(x, y, c)
		})
	}

	if s.mode == NativeAuto && cursorX >= 0 && cursorY >= 0 {
		s.backend.ShowCursor(cursorX, cursorY)
	} else {
		s.backend.HideCursor()
	}
	s.backend.Show()
	return nil
}

func (s *Stage) drawElement(el *scene.Element) {
	r := el.Rect
	if r.IsEmpty() {
		return
	}
	drawBox(r, s.opts.SceneStyle, '▪', s.backend.SetCell)

	if el.Label == "" {
		return
	}
	w := core.StringWidth(el.Label)
	x := r.Left + (r.Width()-w)/2
	y := r.Top + r.Height()/2
	if x < r.Left {
		x = r.Left
	}
	for _, ch := range el.Label {
		cw := core.RuneWidth(ch)
		if cw == 0 {
			continue
		}
		if x+cw > r.Right {
			break
		}
		s.backend.SetCell(x, y, core.Cell{Rune: ch, Width: cw, Style: s.opts.LabelStyle})
		x += cw
	}
}

// Destroy hides the overlay, restores the native cursor and detaches from
// the backend. It is safe to call more than once.
func (s *Stage) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.visible = false
	s.mode = NativeAuto
	s.hover = nil
	s.native = nil
	s.layer.Clear()
}

// Destroyed reports whether Destroy has run.
func (s *Stage) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// String describes the stage for logs.
func (s *Stage) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("stage(visible=%t native=%s selectors=%d)", s.visible, s.mode, len(s.hover))
}
