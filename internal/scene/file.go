package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/supermouse/internal/renderer/core"
)

// File is the on-disk form of a scene.
type File struct {
	Elements []ElementSpec `yaml:"elements"`
}

// ElementSpec is the on-disk form of an element.
// Child rects are relative to the parent's top-left corner.
type ElementSpec struct {
	Tag      string            `yaml:"tag"`
	ID       string            `yaml:"id,omitempty"`
	Classes  []string          `yaml:"class,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Label    string            `yaml:"label,omitempty"`
	Rect     RectSpec          `yaml:"rect"`
	Children []ElementSpec     `yaml:"children,omitempty"`
}

// RectSpec is a position and size in cells.
type RectSpec struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// LoadFile reads a YAML scene from path.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML data.
func Parse(data []byte) (*Scene, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return f.Build()
}

// Build converts the file form into a Scene.
func (f File) Build() (*Scene, error) {
	s := New()
	for i, spec := range f.Elements {
		el, err := spec.build(0, 0)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if err := s.Add(el); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return s, nil
}

func (spec ElementSpec) build(originX, originY int) (*Element, error) {
	if spec.W() < 0 || spec.H() < 0 {
		return nil, fmt.Errorf("%w: %s has negative size", ErrInvalidElement, spec.Tag)
	}
	x, y := originX+spec.Rect.X, originY+spec.Rect.Y
	el := NewElement(spec.Tag, core.RectFromSize(y, x, spec.Rect.H, spec.Rect.W))
	el.ID = spec.ID
	el.Classes = append(el.Classes, spec.Classes...)
	el.Label = spec.Label
	for k, v := range spec.Attrs {
		el.Attrs[k] = v
	}
	for _, cs := range spec.Children {
		child, err := cs.build(x, y)
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}
	return el, nil
}

// W returns the spec width.
func (spec ElementSpec) W() int { return spec.Rect.W }

// H returns the spec height.
func (spec ElementSpec) H() int { return spec.Rect.H }
