// Package script runs Lua files as cursor plugins.
//
// A script describes itself with a global plugin table and reaches the
// engine through the sm module:
//
//	plugin = {
//	    name = "sparkle",
//	    kind = "visual",
//	    priority = 10,
//	    hover_targets = { "a", "button" },
//	}
//
//	function plugin.update(dt)
//	    local x, y = sm.smooth()
//	    sm.draw(x + 1, y, "*", "yellow")
//	end
//
// Hooks are install, update(dt), enable, disable and destroy. dt is in
// seconds. Every hook is optional.
package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/plugin"
	sml "github.com/dshills/supermouse/internal/plugin/lua"
)

// ModuleName is the global and require name of the scripting API.
const ModuleName = "sm"

// Errors.
var (
	// ErrNoPluginTable is returned when a script does not define the
	// global plugin table.
	ErrNoPluginTable = errors.New("script does not define a plugin table")

	// ErrInvalidKind is returned for a kind other than logic or visual.
	ErrInvalidKind = errors.New("invalid plugin kind")
)

// Options configures loading.
type Options struct {
	// Name is used when the script's table has no name. Scripts with
	// neither get a generated one.
	Name string

	// Timeout bounds each hook call. Zero uses the runtime default.
	Timeout time.Duration

	// Settings is exposed to the script as plugin.options. Values set by
	// the script itself are kept.
	Settings map[string]any
}

// Plugin is a plugin implemented by a Lua script.
type Plugin struct {
	plugin.Base

	path   string
	state  *sml.State
	host   plugin.Host
	logger *zap.Logger

	def          sml.Definition
	hoverTargets []string
}

// Load runs the script at path and builds a plugin from its table.
func Load(path string, opts Options) (*Plugin, error) {
	if opts.Name == "" {
		opts.Name = nameFromPath(path)
	}
	return load(path, opts, func(st *sml.State) error { return st.DoFile(path) })
}

// LoadString builds a plugin from Lua source.
func LoadString(src string, opts Options) (*Plugin, error) {
	return load("", opts, func(st *sml.State) error { return st.DoString(src) })
}

func load(path string, opts Options, run func(*sml.State) error) (*Plugin, error) {
	stateOpts := []sml.StateOption{sml.WithModule(ModuleName)}
	if opts.Timeout > 0 {
		stateOpts = append(stateOpts, sml.WithTimeout(opts.Timeout))
	}
	st := sml.NewState(stateOpts...)

	p := &Plugin{
		path:   path,
		state:  st,
		logger: zap.NewNop(),
	}
	st.RegisterModule(ModuleName, p.api())

	if err := run(st); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("load script %s: %w", describe(path), err)
	}
	if err := p.readTable(opts.Name, opts.Settings); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("load script %s: %w", describe(path), err)
	}
	return p, nil
}

func (p *Plugin) readTable(fallback string, settings map[string]any) error {
	tbl, ok := p.state.GetGlobal("plugin").(*lua.LTable)
	if !ok {
		return ErrNoPluginTable
	}
	p.def = sml.Define(tbl)

	name, _ := p.def.String("name")
	if name == "" {
		name = fallback
	}
	if name == "" {
		name = "script-" + uuid.NewString()[:8]
	}

	kind := plugin.KindLogic
	if k, ok := p.def.String("kind"); ok {
		switch strings.ToLower(k) {
		case "logic":
		case "visual":
			kind = plugin.KindVisual
		default:
			return fmt.Errorf("%w: %q", ErrInvalidKind, k)
		}
	}

	prio, _ := p.def.Number("priority")
	p.Base = plugin.NewBase(name, int(prio), kind)
	if enabled, ok := p.def.Bool("enabled"); ok && !enabled {
		p.StartDisabled = true
	}
	p.hoverTargets = p.def.Strings("hover_targets")

	if _, own := tbl.RawGetString("options").(*lua.LTable); !own {
		if settings == nil {
			settings = map[string]any{}
		}
		p.def.Set(p.state.L, "options", settings)
	}
	return nil
}

// Path returns the script file, or "" for scripts loaded from a string.
func (p *Plugin) Path() string {
	return p.path
}

// Install implements plugin.Plugin.
func (p *Plugin) Install(h plugin.Host) error {
	p.host = h
	p.logger = h.Logger()
	for _, pattern := range p.hoverTargets {
		if err := h.RegisterHoverTarget(pattern); err != nil {
			return err
		}
	}
	return p.call("install")
}

// TryUpdate implements plugin.FallibleUpdater.
func (p *Plugin) TryUpdate(dt time.Duration) error {
	return p.call("update", lua.LNumber(dt.Seconds()))
}

// Update implements plugin.Plugin.
func (p *Plugin) Update(dt time.Duration) {
	if err := p.TryUpdate(dt); err != nil {
		p.logger.Error("script update failed", zap.Error(err))
	}
}

// OnEnable implements plugin.Plugin.
func (p *Plugin) OnEnable() {
	if err := p.call("enable"); err != nil {
		p.logger.Error("script enable failed", zap.Error(err))
	}
}

// OnDisable implements plugin.Plugin.
func (p *Plugin) OnDisable() {
	if err := p.call("disable"); err != nil {
		p.logger.Error("script disable failed", zap.Error(err))
	}
}

// Destroy implements plugin.Plugin. The Lua state is closed afterwards.
func (p *Plugin) Destroy() {
	if err := p.call("destroy"); err != nil {
		p.logger.Error("script destroy failed", zap.Error(err))
	}
	_ = p.state.Close()
}

// Close releases a script that was never registered.
func (p *Plugin) Close() error {
	return p.state.Close()
}

func (p *Plugin) call(hook string, args ...lua.LValue) error {
	fn, ok := p.def.Func(hook)
	if !ok {
		return nil
	}
	if _, err := p.state.Call(fn, args...); err != nil {
		return fmt.Errorf("%s: %w", hook, err)
	}
	return nil
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	if base == "init.lua" {
		return filepath.Base(filepath.Dir(path))
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func describe(path string) string {
	if path == "" {
		return "<string>"
	}
	return path
}
