// Package scene models the hoverable surface the cursor moves over: a tree
// of rectangular elements carrying a tag, an id, classes and attributes,
// plus the selector language used to match them.
package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/supermouse/internal/renderer/core"
)

// Element is a rectangular region of the scene.
// Coordinates are in terminal cells.
type Element struct {
	Tag     string
	ID      string
	Classes []string
	Attrs   map[string]string
	Label   string
	Rect    core.ScreenRect

	parent   *Element
	children []*Element
}

// NewElement creates an element with the given tag and bounds.
func NewElement(tag string, rect core.ScreenRect) *Element {
	return &Element{
		Tag:   tag,
		Rect:  rect,
		Attrs: make(map[string]string),
	}
}

// Parent returns the enclosing element, or nil for a root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns the child elements in paint order.
func (e *Element) Children() []*Element {
	return e.children
}

// Append adds child as the last child of e and returns child.
func (e *Element) Append(child *Element) *Element {
	child.parent = e
	e.children = append(e.children, child)
	return child
}

// HasClass reports whether the element carries class c.
func (e *Element) HasClass(c string) bool {
	return slices.Contains(e.Classes, c)
}

// Attr returns the value of attribute name.
func (e *Element) Attr(name string) (string, bool) {
	if e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[name]
	return v, ok
}

// SetAttr sets attribute name to value and returns e.
func (e *Element) SetAttr(name, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
	return e
}

// Center returns the center of the element in cell coordinates.
func (e *Element) Center() (x, y float64) {
	return e.Rect.Center()
}

// Closest returns the nearest element, starting at e and walking up
// through its ancestors, for which match returns true.
func (e *Element) Closest(match func(*Element) bool) *Element {
	for el := e; el != nil; el = el.parent {
		if match(el) {
			return el
		}
	}
	return nil
}

// String renders the element as a selector-like description for logs.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Tag)
	if e.ID != "" {
		b.WriteString("#" + e.ID)
	}
	for _, c := range e.Classes {
		b.WriteString("." + c)
	}
	return b.String()
}

// validate checks that the element can be hit-tested.
func (e *Element) validate() error {
	if e.Tag == "" {
		return fmt.Errorf("%w: element has no tag", ErrInvalidElement)
	}
	if e.Rect.Inverted() {
		return fmt.Errorf("%w: %s has negative bounds", ErrInvalidElement, e)
	}
	return nil
}
