// Package plugin provides the plugin contract and the registry that
// schedules plugins for the cursor engine.
//
// # Writing a plugin
//
// A plugin embeds Base and overrides the hooks it needs:
//
//	type Halo struct {
//	    plugin.Base
//	    host plugin.Host
//	}
//
//	func NewHalo() *Halo {
//	    return &Halo{Base: plugin.NewBase("halo", 0, plugin.KindVisual)}
//	}
//
//	func (h *Halo) Install(host plugin.Host) error {
//	    h.host = host
//	    return host.RegisterHoverTarget("a")
//	}
//
//	func (h *Halo) Update(dt time.Duration) {
//	    s := h.host.State()
//	    x, y := s.Smooth.Cell()
//	    h.host.Stage().Layer().Set(x, y, core.NewCell('o'))
//	}
//
// # Lifecycle
//
// Register calls Install exactly once and then schedules the plugin as
// enabled (or disabled, if Base.StartDisabled is set). SetEnabled fires
// OnEnable or OnDisable once per transition. Remove and Teardown call
// Destroy, after which the plugin receives no further hooks.
//
// # Scheduling
//
// Plugins run in ascending priority order; ties keep registration order.
// Logic plugins (KindLogic) rewrite the interaction state and receive
// Update only while enabled. Visual plugins (KindVisual) draw and receive
// Update every frame so they can fade out after being disabled.
//
// A panic or error in any hook is recovered, logged and reported as a
// HookError. The frame continues with the remaining plugins.
//
// # Shared state
//
// The interaction state is not locked. Each field has one logical writer
// per frame: input writes the pointer and hover fields, logic plugins may
// redirect Target and Shape, and the engine derives Smooth and Velocity.
// When two plugins redirect Target in the same frame the later one wins.
package plugin
