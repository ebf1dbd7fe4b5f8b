package plugin

import (
	"time"
)

// Kind selects how the scheduler drives a plugin.
type Kind int

const (
	// KindLogic plugins redirect state (target, shape, other plugins'
	// enable flags). They are updated only while enabled.
	KindLogic Kind = iota

	// KindVisual plugins draw into the stage. They are updated every frame,
	// enabled or not, so they can animate out after being disabled.
	KindVisual
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLogic:
		return "logic"
	case KindVisual:
		return "visual"
	default:
		return "unknown"
	}
}

// Priorities. Lower values run first.
const (
	PriorityFirst   = -1000
	PriorityDefault = 0
)

// Plugin is a unit of cursor behavior managed by a Registry.
//
// Implementations embed Base, which supplies the identity accessors and
// no-op hooks, and override the hooks they need. All hooks are called from
// the frame loop and must not block.
type Plugin interface {
	Name() string
	Priority() int
	Kind() Kind

	// Install is called exactly once, when the plugin is registered.
	Install(host Host) error

	// Update is called once per frame with the time since the last frame.
	Update(dt time.Duration)

	// OnEnable and OnDisable are called once per transition.
	OnEnable()
	OnDisable()

	// Destroy releases every resource the plugin holds. It is the last
	// hook the plugin receives.
	Destroy()

	base() *Base
}

// FallibleUpdater is implemented by plugins whose update can fail without
// panicking. The registry calls TryUpdate instead of Update and counts a
// returned error as a fault.
type FallibleUpdater interface {
	TryUpdate(dt time.Duration) error
}

// Base carries a plugin's identity and enabled flag and provides no-op
// hooks. Embed it in every plugin.
type Base struct {
	name     string
	priority int
	kind     Kind
	enabled  bool

	// StartDisabled registers the plugin in the disabled state without
	// firing OnDisable.
	StartDisabled bool
}

// NewBase returns a Base with the given identity.
func NewBase(name string, priority int, kind Kind) Base {
	return Base{name: name, priority: priority, kind: kind}
}

// Name returns the unique plugin name.
func (b *Base) Name() string { return b.name }

// Priority returns the scheduling priority.
func (b *Base) Priority() int { return b.priority }

// Kind returns the scheduling kind.
func (b *Base) Kind() Kind { return b.kind }

// Enabled reports the plugin's current enabled flag as last set by the
// registry.
func (b *Base) Enabled() bool { return b.enabled }

// SetName renames the plugin. It has no effect once registered.
func (b *Base) SetName(name string) { b.name = name }

// SetPriority changes the priority. It has no effect once registered.
func (b *Base) SetPriority(p int) { b.priority = p }

// Configure overrides a plugin's identity before it is registered. An
// empty name or nil pointer keeps the current value.
func Configure(p Plugin, name string, priority *int, enabled *bool) {
	b := p.base()
	if name != "" {
		b.name = name
	}
	if priority != nil {
		b.priority = *priority
	}
	if enabled != nil {
		b.StartDisabled = !*enabled
	}
}

// Install does nothing.
func (b *Base) Install(Host) error { return nil }

// Update does nothing.
func (b *Base) Update(time.Duration) {}

// OnEnable does nothing.
func (b *Base) OnEnable() {}

// OnDisable does nothing.
func (b *Base) OnDisable() {}

// Destroy does nothing.
func (b *Base) Destroy() {}

func (b *Base) base() *Base { return b }
