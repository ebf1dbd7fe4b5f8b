package scene

import (
	"fmt"
	"strings"
)

// SelectorError describes a malformed selector pattern.
type SelectorError struct {
	Pattern string
	Pos     int
	Msg     string
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("selector %q: %s at offset %d", e.Pattern, e.Msg, e.Pos)
}

// Selector is a parsed comma-separated list of compound selectors.
// An element matches when any compound matches.
type Selector struct {
	pattern   string
	compounds []compound
}

type attrTest struct {
	name     string
	value    string
	hasValue bool
}

// compound is a run of simple selectors that must all hold on one element,
// e.g. button.primary[supermouse-stick].
type compound struct {
	any     bool
	tag     string
	id      string
	classes []string
	attrs   []attrTest
}

// ParseSelector parses pattern into a Selector.
func ParseSelector(pattern string) (Selector, error) {
	p := &selectorParser{src: pattern}
	sel := Selector{pattern: strings.TrimSpace(pattern)}

	for {
		p.skipSpace()
		c, err := p.compound()
		if err != nil {
			return Selector{}, err
		}
		sel.compounds = append(sel.compounds, c)
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.peek() != ',' {
			return Selector{}, p.errorf("unexpected %q", p.peek())
		}
		p.pos++
	}
	return sel, nil
}

// MustParseSelector is like ParseSelector but panics on error.
func MustParseSelector(pattern string) Selector {
	sel, err := ParseSelector(pattern)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the normalized source pattern.
func (s Selector) String() string {
	return s.pattern
}

// IsZero reports whether s is the zero Selector, which matches nothing.
func (s Selector) IsZero() bool {
	return len(s.compounds) == 0
}

// Match reports whether el satisfies the selector.
func (s Selector) Match(el *Element) bool {
	if el == nil {
		return false
	}
	for i := range s.compounds {
		if s.compounds[i].match(el) {
			return true
		}
	}
	return false
}

func (c *compound) match(el *Element) bool {
	if c.tag != "" && !strings.EqualFold(c.tag, el.Tag) {
		return false
	}
	if c.id != "" && c.id != el.ID {
		return false
	}
	for _, cls := range c.classes {
		if !el.HasClass(cls) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := el.Attr(a.name)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) eof() bool  { return p.pos >= len(p.src) }
func (p *selectorParser) peek() byte { return p.src[p.pos] }

func (p *selectorParser) errorf(format string, args ...any) error {
	return &SelectorError{Pattern: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *selectorParser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t' || p.peek() == '\n') {
		p.pos++
	}
}

func (p *selectorParser) compound() (compound, error) {
	var c compound
	start := p.pos

	switch {
	case p.eof():
		return c, p.errorf("empty selector")
	case p.peek() == '*':
		c.any = true
		p.pos++
	case isIdentByte(p.peek()):
		c.tag = p.ident()
	}

	for !p.eof() {
		switch p.peek() {
		case '#':
			p.pos++
			id := p.ident()
			if id == "" {
				return c, p.errorf("expected id after '#'")
			}
			if c.id != "" && c.id != id {
				return c, p.errorf("conflicting ids")
			}
			c.id = id
		case '.':
			p.pos++
			cls := p.ident()
			if cls == "" {
				return c, p.errorf("expected class after '.'")
			}
			c.classes = append(c.classes, cls)
		case '[':
			p.pos++
			a, err := p.attr()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
		default:
			if p.pos == start {
				return c, p.errorf("unexpected %q", p.peek())
			}
			return c, nil
		}
	}
	if p.pos == start {
		return c, p.errorf("empty selector")
	}
	return c, nil
}

func (p *selectorParser) attr() (attrTest, error) {
	var a attrTest
	p.skipSpace()
	a.name = p.ident()
	if a.name == "" {
		return a, p.errorf("expected attribute name")
	}
	p.skipSpace()
	if p.eof() {
		return a, p.errorf("unterminated attribute")
	}
	if p.peek() == '=' {
		p.pos++
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return a, err
		}
		a.value = v
		a.hasValue = true
		p.skipSpace()
	}
	if p.eof() || p.peek() != ']' {
		return a, p.errorf("expected ']'")
	}
	p.pos++
	return a, nil
}

func (p *selectorParser) value() (string, error) {
	if p.eof() {
		return "", p.errorf("expected attribute value")
	}
	if q := p.peek(); q == '"' || q == '\'' {
		p.pos++
		end := strings.IndexByte(p.src[p.pos:], q)
		if end < 0 {
			return "", p.errorf("unterminated string")
		}
		v := p.src[p.pos : p.pos+end]
		p.pos += end + 1
		return v, nil
	}
	v := p.ident()
	if v == "" {
		return "", p.errorf("expected attribute value")
	}
	return v, nil
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentByte(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
