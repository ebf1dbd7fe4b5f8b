package script

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/plugin"
	sml "github.com/dshills/supermouse/internal/plugin/lua"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/state"
)

// api returns the sm module functions. They raise a Lua error when called
// outside a hook, since the host is only known after install.
func (p *Plugin) api() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"pointer":  p.point(func(s *state.Interaction) state.Point { return s.Pointer }),
		"target":   p.point(func(s *state.Interaction) state.Point { return s.Target }),
		"smooth":   p.point(func(s *state.Interaction) state.Point { return s.Smooth }),
		"velocity": p.point(func(s *state.Interaction) state.Point { return s.Velocity }),

		"is_down":        p.flag(func(s *state.Interaction) bool { return s.IsDown }),
		"is_hover":       p.flag(func(s *state.Interaction) bool { return s.IsHover }),
		"is_native":      p.flag(func(s *state.Interaction) bool { return s.IsNative }),
		"reduced_motion": p.flag(func(s *state.Interaction) bool { return s.ReducedMotion }),

		"attr":        p.luaAttr,
		"attrs":       p.luaAttrs,
		"set_target":  p.luaSetTarget,
		"set_shape":   p.luaSetShape,
		"clear_shape": p.luaClearShape,
		"draw":        p.luaDraw,
		"size":        p.luaSize,

		"register_hover_target": p.luaRegisterHoverTarget,
		"enable":                p.toggle(true),
		"disable":               p.toggle(false),
		"is_enabled":            p.luaIsEnabled,
		"enabled":               p.luaEnabled,
		"log":                   p.luaLog,
	}
}

func (p *Plugin) mustHost(L *lua.LState) plugin.Host {
	if p.host == nil {
		L.RaiseError("%s is only available inside plugin hooks", ModuleName)
	}
	return p.host
}

func (p *Plugin) point(get func(*state.Interaction) state.Point) lua.LGFunction {
	return func(L *lua.LState) int {
		pt := get(p.mustHost(L).State())
		L.Push(lua.LNumber(pt.X))
		L.Push(lua.LNumber(pt.Y))
		return 2
	}
}

func (p *Plugin) flag(get func(*state.Interaction) bool) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LBool(get(p.mustHost(L).State())))
		return 1
	}
}

// sm.attr(key [, default]) returns a hover attribute without its prefix.
func (p *Plugin) luaAttr(L *lua.LState) int {
	s := p.mustHost(L).State()
	v, ok := s.Attrs.Get(L.CheckString(1))
	switch {
	case ok:
		L.Push(lua.LString(v))
	case L.GetTop() >= 2:
		L.Push(L.Get(2))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func (p *Plugin) luaAttrs(L *lua.LState) int {
	s := p.mustHost(L).State()
	L.Push(sml.ToLua(L, map[string]string(s.Attrs)))
	return 1
}

func (p *Plugin) luaSetTarget(L *lua.LState) int {
	s := p.mustHost(L).State()
	s.Target = state.Point{X: float64(L.CheckNumber(1)), Y: float64(L.CheckNumber(2))}
	return 0
}

// sm.set_shape(width, height [, radius]) publishes a shape override.
func (p *Plugin) luaSetShape(L *lua.LState) int {
	s := p.mustHost(L).State()
	s.Shape = &state.Shape{
		Width:        float64(L.CheckNumber(1)),
		Height:       float64(L.CheckNumber(2)),
		BorderRadius: float64(L.OptNumber(3, 0)),
	}
	return 0
}

func (p *Plugin) luaClearShape(L *lua.LState) int {
	p.mustHost(L).State().Shape = nil
	return 0
}

// sm.draw(x, y, text [, color [, opacity]]) writes text into the overlay
// and returns the columns used. Positions are rounded to cells.
func (p *Plugin) luaDraw(L *lua.LState) int {
	h := p.mustHost(L)
	x := int(math.Round(float64(L.CheckNumber(1))))
	y := int(math.Round(float64(L.CheckNumber(2))))
	text := L.CheckString(3)

	color := core.ColorWhite
	if name := L.OptString(4, ""); name != "" {
		c, ok := core.ParseColor(name)
		if !ok {
			L.ArgError(4, "unknown color "+name)
		}
		color = c
	}
	opacity := max(0, min(1, float64(L.OptNumber(5, 1))))
	if opacity <= 0 {
		L.Push(lua.LNumber(0))
		return 1
	}

	n := h.Stage().Layer().Text(x, y, text, core.NewStyle(color).Faded(opacity))
	L.Push(lua.LNumber(n))
	return 1
}

func (p *Plugin) luaSize(L *lua.LState) int {
	w, h := p.mustHost(L).Stage().Layer().Size()
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(h))
	return 2
}

func (p *Plugin) luaRegisterHoverTarget(L *lua.LState) int {
	if err := p.mustHost(L).RegisterHoverTarget(L.CheckString(1)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (p *Plugin) toggle(on bool) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := p.mustHost(L).SetEnabled(L.CheckString(1), on); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}

func (p *Plugin) luaIsEnabled(L *lua.LState) int {
	L.Push(lua.LBool(p.mustHost(L).IsEnabled(L.CheckString(1))))
	return 1
}

// sm.enabled() reports whether this script is enabled, so visual scripts
// can fade out while disabled.
func (p *Plugin) luaEnabled(L *lua.LState) int {
	p.mustHost(L)
	L.Push(lua.LBool(p.Enabled()))
	return 1
}

func (p *Plugin) luaLog(L *lua.LState) int {
	p.mustHost(L).Logger().Info("script", zap.String("msg", L.CheckString(1)))
	return 0
}
