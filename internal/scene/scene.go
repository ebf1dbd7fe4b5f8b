package scene

import (
	"errors"
	"fmt"
)

// Scene errors.
var (
	// ErrInvalidElement is returned for elements that cannot be placed.
	ErrInvalidElement = errors.New("invalid element")

	// ErrDuplicateID is returned when two elements share an id.
	ErrDuplicateID = errors.New("duplicate element id")
)

// Scene is an ordered forest of elements. Later roots paint over earlier
// ones and children paint over their parents.
type Scene struct {
	roots []*Element
	byID  map[string]*Element
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{byID: make(map[string]*Element)}
}

// Add validates el and its subtree and appends it as a root.
func (s *Scene) Add(el *Element) error {
	if el == nil {
		return fmt.Errorf("%w: nil element", ErrInvalidElement)
	}
	ids := make(map[string]*Element)
	if err := s.index(el, ids); err != nil {
		return err
	}
	for id, e := range ids {
		s.byID[id] = e
	}
	s.roots = append(s.roots, el)
	return nil
}

func (s *Scene) index(el *Element, ids map[string]*Element) error {
	if err := el.validate(); err != nil {
		return err
	}
	if el.ID != "" {
		if _, exists := s.byID[el.ID]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateID, el.ID)
		}
		if _, exists := ids[el.ID]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateID, el.ID)
		}
		ids[el.ID] = el
	}
	for _, child := range el.children {
		if err := s.index(child, ids); err != nil {
			return err
		}
	}
	return nil
}

// Roots returns the root elements in paint order.
func (s *Scene) Roots() []*Element {
	return s.roots
}

// ByID returns the element with the given id.
func (s *Scene) ByID(id string) (*Element, bool) {
	el, ok := s.byID[id]
	return el, ok
}

// Walk visits every element in paint order.
func (s *Scene) Walk(fn func(*Element)) {
	var visit func(*Element)
	visit = func(el *Element) {
		fn(el)
		for _, c := range el.children {
			visit(c)
		}
	}
	for _, r := range s.roots {
		visit(r)
	}
}

// HitTest returns the topmost element containing the cell (x, y),
// or nil if the point is over empty space.
func (s *Scene) HitTest(x, y int) *Element {
	var hit *Element
	s.Walk(func(el *Element) {
		if el.Rect.Contains(x, y) {
			hit = el
		}
	})
	return hit
}

// Query returns all elements matching sel in paint order.
func (s *Scene) Query(sel Selector) []*Element {
	var out []*Element
	s.Walk(func(el *Element) {
		if sel.Match(el) {
			out = append(out, el)
		}
	})
	return out
}
