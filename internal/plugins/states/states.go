// Package states swaps which plugins are enabled based on the hover
// target's supermouse-state attribute.
//
// Each named state maps to a group of plugin names. Every plugin that
// appears in any group (or in the default group) is managed: entering a
// state enables the plugins of its group and disables the other managed
// plugins. Hovering nothing, or an element whose state has no group,
// selects the default group.
package states

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/state"
)

// Name is the default plugin name.
const Name = "states"

// Options configures the groups.
type Options struct {
	// Default lists the plugins enabled outside any named state.
	Default []string

	// States maps a state name to the plugins enabled in it.
	States map[string][]string

	// Attr is the attribute key, without the namespace prefix, that names
	// the state. Defaults to "state".
	Attr string
}

// Plugin drives the groups. It runs first so its changes apply to every
// other plugin in the same frame.
type Plugin struct {
	plugin.Base

	opts    Options
	host    plugin.Host
	managed []string

	reconciled bool
	current    string

	// missing holds managed names not registered at the last apply.
	missing map[string]bool
}

// New creates a states plugin.
func New(opts Options) *Plugin {
	if opts.Attr == "" {
		opts.Attr = state.AttrState
	}
	return &Plugin{
		Base:    plugin.NewBase(Name, plugin.PriorityFirst, plugin.KindLogic),
		opts:    opts,
		managed: managedNames(opts),
		missing: make(map[string]bool),
	}
}

func managedNames(opts Options) []string {
	var names []string
	names = append(names, opts.Default...)
	for _, group := range opts.States {
		names = append(names, group...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Install implements plugin.Plugin.
func (p *Plugin) Install(h plugin.Host) error {
	p.host = h
	return nil
}

// Current returns the active state name, or "" for the default group.
func (p *Plugin) Current() string {
	return p.current
}

// Managed returns the sorted names of the plugins under control.
func (p *Plugin) Managed() []string {
	return slices.Clone(p.managed)
}

// Update implements plugin.Plugin.
func (p *Plugin) Update(time.Duration) {
	if !p.reconciled {
		p.current = ""
		p.apply(p.opts.Default)
		p.reconciled = true
	} else if len(p.missing) > 0 {
		p.adopt()
	}

	next := p.resolve(p.host.State())
	if next == p.current {
		return
	}
	p.host.Logger().Debug("state changed", zap.String("from", p.current), zap.String("to", next))
	p.current = next
	p.apply(p.group(next))
}

// OnDisable implements plugin.Plugin. The managed plugins go back to the
// default group and are reconciled again on the next enabled frame.
func (p *Plugin) OnDisable() {
	if p.host == nil {
		return
	}
	p.current = ""
	p.apply(p.opts.Default)
	p.reconciled = false
}

func (p *Plugin) resolve(s *state.Interaction) string {
	if !s.IsHover {
		return ""
	}
	name := s.Attrs.String(p.opts.Attr, "")
	if _, ok := p.opts.States[name]; !ok {
		return ""
	}
	return name
}

func (p *Plugin) group(name string) []string {
	if name == "" {
		return p.opts.Default
	}
	return p.opts.States[name]
}

// apply enables exactly the managed plugins in group. Plugins already in
// the wanted state are left alone.
func (p *Plugin) apply(group []string) {
	for _, name := range p.managed {
		p.set(name, slices.Contains(group, name))
	}
}

// adopt brings plugins registered after the last apply into the current
// group.
func (p *Plugin) adopt() {
	group := p.group(p.current)
	for name := range p.missing {
		if _, ok := p.host.Plugin(name); ok {
			p.set(name, slices.Contains(group, name))
		}
	}
}

func (p *Plugin) set(name string, want bool) {
	if _, ok := p.host.Plugin(name); !ok {
		if !p.missing[name] {
			p.host.Logger().Warn("managed plugin not registered", zap.String("managed", name))
		}
		p.missing[name] = true
		return
	}
	delete(p.missing, name)
	if p.host.IsEnabled(name) == want {
		return
	}
	if err := p.host.SetEnabled(name, want); err != nil {
		p.host.Logger().Error("toggle managed plugin", zap.String("managed", name), zap.Error(err))
	}
}
