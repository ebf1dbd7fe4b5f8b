// Package core provides shared cell, style and color types for the stage
// overlay and the terminal backends.
// This package breaks import cycles between stage and backend.
package core

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type colorMode uint8

const (
	modeRGB colorMode = iota
	modeIndexed
	modeDefault
)

// Color is a 24-bit color, an entry of the terminal palette, or the
// terminal's own default. The zero value is RGB black.
type Color struct {
	R, G, B uint8
	mode    colorMode
}

// ColorDefault leaves the choice to the terminal.
var ColorDefault = Color{mode: modeDefault}

// Named colors accepted in configs and scene attributes.
var (
	ColorBlack   = ColorFromRGB(0x00, 0x00, 0x00)
	ColorWhite   = ColorFromRGB(0xff, 0xff, 0xff)
	ColorRed     = ColorFromRGB(0xff, 0x00, 0x00)
	ColorGreen   = ColorFromRGB(0x00, 0xff, 0x00)
	ColorBlue    = ColorFromRGB(0x00, 0x00, 0xff)
	ColorYellow  = ColorFromRGB(0xff, 0xff, 0x00)
	ColorCyan    = ColorFromRGB(0x00, 0xff, 0xff)
	ColorMagenta = ColorFromRGB(0xff, 0x00, 0xff)
	ColorGray    = ColorFromRGB(0x80, 0x80, 0x80)
)

func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex refers to palette slot i.
func ColorFromIndex(i uint8) Color {
	return Color{R: i, mode: modeIndexed}
}

// ColorFromHex parses "#rgb" or "#rrggbb". The leading '#' is optional.
func ColorFromHex(hex string) (Color, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if n := len(hex); n != 4 && n != 7 {
		return Color{}, fmt.Errorf("hex color %q: want 3 or 6 digits", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("hex color %q: %w", hex, err)
	}
	return fromColorful(c), nil
}

var namedColors = map[string]Color{
	"default": ColorDefault,
	"black":   ColorBlack,
	"white":   ColorWhite,
	"red":     ColorRed,
	"green":   ColorGreen,
	"blue":    ColorBlue,
	"yellow":  ColorYellow,
	"cyan":    ColorCyan,
	"magenta": ColorMagenta,
	"gray":    ColorGray,
	"grey":    ColorGray,
}

// ParseColor resolves a color word or a hex string. Unknown values
// return ok=false so callers can keep their current color.
func ParseColor(s string) (Color, bool) {
	if s == "" {
		return Color{}, false
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, true
	}
	c, err := ColorFromHex(s)
	return c, err == nil
}

// IsDefault reports whether the terminal picks the color.
func (c Color) IsDefault() bool {
	return c.mode == modeDefault
}

// Index returns the palette slot of an indexed color.
func (c Color) Index() (uint8, bool) {
	return c.R, c.mode == modeIndexed
}

// Equals compares colors by what they render as. Only the palette slot
// counts for indexed colors.
func (c Color) Equals(other Color) bool {
	if c.mode != other.mode {
		return false
	}
	switch c.mode {
	case modeDefault:
		return true
	case modeIndexed:
		return c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

func (c Color) String() string {
	switch c.mode {
	case modeDefault:
		return "default"
	case modeIndexed:
		return fmt.Sprintf("palette(%d)", c.R)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Blend mixes c toward other in Lab space; amount 0 is c and 1 is other.
// Palette and default colors cannot be mixed, so they switch over at the
// halfway point.
func (c Color) Blend(other Color, amount float64) Color {
	if c.mode != modeRGB || other.mode != modeRGB {
		if amount < 0.5 {
			return c
		}
		return other
	}
	if amount <= 0 {
		return c
	}
	if amount >= 1 {
		return other
	}
	return fromColorful(c.colorful().BlendLab(other.colorful(), amount).Clamped())
}

// Fade darkens c toward black. Terminals have no alpha channel, so this
// is how opacity is rendered: opacity 1 is c, 0 is black.
func (c Color) Fade(opacity float64) Color {
	return ColorBlack.Blend(c, opacity)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.RGB255()
	return ColorFromRGB(r, g, b)
}
