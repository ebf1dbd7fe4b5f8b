package plugin

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry holds plugins in priority order and drives their lifecycle.
//
// The registry lock is held only while its tables change. Hooks run
// outside the lock, so a hook may call back into the registry (for
// example to enable another plugin) without deadlocking.
type Registry struct {
	mu sync.RWMutex

	host   Host
	logger *zap.Logger
	config RegistryConfig

	// Scheduled plugins, sorted by priority then registration order.
	entries []*entry

	// All plugins by name, including ones still installing.
	byName map[string]*entry

	seq int

	// Event handlers (protected by mu)
	eventHandlers []EventHandler
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// FaultLimit disables a plugin after this many consecutive failed
	// updates. Zero never disables.
	FaultLimit int
}

// DefaultRegistryConfig returns the default configuration.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{FaultLimit: 0}
}

type entry struct {
	plugin Plugin
	name   string
	kind   Kind
	prio   int
	seq    int
	host   Host

	state  State
	faults int
}

// Info describes a registered plugin.
type Info struct {
	Name     string
	Priority int
	Kind     Kind
	State    State
}

// NewRegistry creates a registry whose plugins are installed against host.
func NewRegistry(host Host, logger *zap.Logger, config RegistryConfig) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		host:    host,
		logger:  logger,
		config:  config,
		entries: make([]*entry, 0),
		byName:  make(map[string]*entry),
	}
}

// Register adds p and calls its Install hook. A name that is already
// registered leaves the existing plugin untouched and returns
// ErrAlreadyRegistered. If Install fails the plugin is dropped.
func (r *Registry) Register(p Plugin) error {
	if p == nil || p.base() == nil {
		return fmt.Errorf("%w: nil plugin", ErrInvalidPlugin)
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPlugin)
	}

	r.mu.Lock()
	if _, exists := r.byName[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("plugin %q: %w", name, ErrAlreadyRegistered)
	}
	r.seq++
	e := &entry{
		plugin: p,
		name:   name,
		kind:   p.Kind(),
		prio:   p.Priority(),
		seq:    r.seq,
		state:  StateInstalling,
	}
	if r.host != nil {
		e.host = &scopedHost{
			Host:   r.host,
			logger: r.logger.Named("plugin").With(zap.String("plugin", name)),
		}
	}
	r.byName[name] = e
	r.mu.Unlock()

	if err := r.call(e, HookInstall, func() error { return p.Install(e.host) }); err != nil {
		r.mu.Lock()
		delete(r.byName, name)
		r.mu.Unlock()
		r.emitEvent(Event{Type: EventFault, Plugin: name, Err: err})
		return err
	}

	r.mu.Lock()
	if p.base().StartDisabled {
		e.state = StateDisabled
	} else {
		e.state = StateEnabled
	}
	p.base().enabled = e.state == StateEnabled
	r.entries = append(r.entries, e)
	slices.SortStableFunc(r.entries, func(a, b *entry) int {
		return cmp.Compare(a.prio, b.prio)
	})
	r.mu.Unlock()

	r.logger.Debug("plugin installed",
		zap.String("plugin", name),
		zap.Int("priority", e.prio),
		zap.Stringer("kind", e.kind))
	r.emitEvent(Event{Type: EventInstalled, Plugin: name})
	return nil
}

// Tick runs one frame. Logic plugins are updated while enabled; visual
// plugins are updated every frame. A failing plugin is logged and skipped
// and never stops the frame for the others.
func (r *Registry) Tick(dt time.Duration) {
	r.mu.RLock()
	snapshot := slices.Clone(r.entries)
	r.mu.RUnlock()

	for _, e := range snapshot {
		r.mu.RLock()
		st := e.state
		r.mu.RUnlock()

		if !st.IsInstalled() {
			continue
		}
		if e.kind == KindLogic && st != StateEnabled {
			continue
		}

		err := r.call(e, HookUpdate, func() error {
			if f, ok := e.plugin.(FallibleUpdater); ok {
				return f.TryUpdate(dt)
			}
			e.plugin.Update(dt)
			return nil
		})
		if err != nil {
			r.fault(e, err)
			continue
		}
		r.mu.Lock()
		e.faults = 0
		r.mu.Unlock()
	}
}

func (r *Registry) fault(e *entry, err error) {
	r.mu.Lock()
	e.faults++
	faults := e.faults
	r.mu.Unlock()

	r.logger.Error("plugin update failed",
		zap.String("plugin", e.name),
		zap.Int("consecutive", faults),
		zap.Error(err))
	r.emitEvent(Event{Type: EventFault, Plugin: e.name, Err: err})

	if r.config.FaultLimit > 0 && faults >= r.config.FaultLimit {
		r.logger.Warn("disabling faulty plugin", zap.String("plugin", e.name))
		_ = r.SetEnabled(e.name, false)
	}
}

// SetEnabled enables or disables a plugin. OnEnable or OnDisable fires
// once per transition; setting the current value again does nothing.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	e, ok := r.byName[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("plugin %q: %w", name, ErrPluginNotFound)
	}
	if !e.state.IsInstalled() {
		r.mu.Unlock()
		return fmt.Errorf("plugin %q: %w", name, ErrNotInstalled)
	}
	want := StateDisabled
	if enabled {
		want = StateEnabled
	}
	if e.state == want {
		r.mu.Unlock()
		return nil
	}
	e.state = want
	e.plugin.base().enabled = enabled
	r.mu.Unlock()

	hook, fn, evt := HookDisable, e.plugin.OnDisable, EventDisabled
	if enabled {
		hook, fn, evt = HookEnable, e.plugin.OnEnable, EventEnabled
	}
	err := r.call(e, hook, func() error {
		fn()
		return nil
	})
	if err != nil {
		r.logger.Error("plugin hook failed", zap.String("plugin", name), zap.Error(err))
		r.emitEvent(Event{Type: EventFault, Plugin: name, Err: err})
	}
	r.emitEvent(Event{Type: evt, Plugin: name})
	return err
}

// IsEnabled reports whether the named plugin is registered and enabled.
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return ok && e.state == StateEnabled
}

// Get returns a registered plugin by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok || !e.state.IsInstalled() {
		return nil, false
	}
	return e.plugin, true
}

// List returns the scheduled plugins in update order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, len(r.entries))
	for i, e := range r.entries {
		out[i] = Info{Name: e.name, Priority: e.prio, Kind: e.kind, State: e.state}
	}
	return out
}

// Len returns the number of scheduled plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Remove destroys and unregisters a single plugin.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	e, ok := r.byName[name]
	if !ok || !e.state.IsInstalled() {
		r.mu.Unlock()
		return fmt.Errorf("plugin %q: %w", name, ErrPluginNotFound)
	}
	delete(r.byName, name)
	r.entries = slices.DeleteFunc(r.entries, func(x *entry) bool { return x == e })
	e.state = StateDestroyed
	e.plugin.base().enabled = false
	r.mu.Unlock()

	return r.destroy(e)
}

// Teardown destroys every plugin in reverse registration order and
// empties the registry.
func (r *Registry) Teardown() error {
	r.mu.Lock()
	order := slices.Clone(r.entries)
	slices.SortFunc(order, func(a, b *entry) int {
		return cmp.Compare(b.seq, a.seq)
	})
	for _, e := range order {
		e.state = StateDestroyed
		e.plugin.base().enabled = false
		delete(r.byName, e.name)
	}
	r.entries = r.entries[:0]
	r.mu.Unlock()

	var errs []error
	for _, e := range order {
		if err := r.destroy(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) destroy(e *entry) error {
	err := r.call(e, HookDestroy, func() error {
		e.plugin.Destroy()
		return nil
	})
	if err != nil {
		r.logger.Error("plugin destroy failed", zap.String("plugin", e.name), zap.Error(err))
		r.emitEvent(Event{Type: EventFault, Plugin: e.name, Err: err})
	}
	r.emitEvent(Event{Type: EventDestroyed, Plugin: e.name})
	return err
}

// call runs a hook, converting a returned error or a panic into a
// HookError.
func (r *Registry) call(e *entry, hook Hook, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &HookError{Plugin: e.name, Hook: hook, Err: fmt.Errorf("%w: %v", ErrPanic, rec)}
		}
	}()
	if ferr := fn(); ferr != nil {
		return &HookError{Plugin: e.name, Hook: hook, Err: ferr}
	}
	return nil
}

// Subscribe registers an event handler. Returns an unsubscribe function.
func (r *Registry) Subscribe(handler EventHandler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := len(r.eventHandlers)
	r.eventHandlers = append(r.eventHandlers, handler)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// Set to nil instead of removing to avoid index shifting issues
		if index < len(r.eventHandlers) {
			r.eventHandlers[index] = nil
		}
	}
}

// emitEvent sends an event to all handlers.
// Handlers are called outside any locks and panics are recovered.
func (r *Registry) emitEvent(event Event) {
	r.mu.RLock()
	handlers := make([]EventHandler, len(r.eventHandlers))
	copy(handlers, r.eventHandlers)
	r.mu.RUnlock()

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		func() {
			defer func() {
				_ = recover()
			}()
			handler(event)
		}()
	}
}
