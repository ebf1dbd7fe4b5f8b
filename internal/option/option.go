// Package option resolves plugin options that may be fixed values or
// functions of the current interaction state.
package option

import "github.com/dshills/supermouse/internal/state"

// Value is either a constant or a function of state, re-evaluated every
// time it is resolved. The zero Value resolves to the caller's default.
type Value[T any] struct {
	fn  func(*state.Interaction) T
	set bool
	v   T
}

// Const returns a Value that always resolves to v.
func Const[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Func returns a Value computed from state on each resolution.
// A nil fn yields the zero Value.
func Func[T any](fn func(*state.Interaction) T) Value[T] {
	if fn == nil {
		return Value[T]{}
	}
	return Value[T]{fn: fn, set: true}
}

// IsSet reports whether the value was configured.
func (o Value[T]) IsSet() bool {
	return o.set
}

// IsDynamic reports whether the value depends on state.
func (o Value[T]) IsDynamic() bool {
	return o.fn != nil
}

// Resolve returns the option's current value, or def when unset.
func (o Value[T]) Resolve(s *state.Interaction, def T) T {
	switch {
	case !o.set:
		return def
	case o.fn != nil:
		return o.fn(s)
	default:
		return o.v
	}
}

// Or returns o if set, otherwise fallback.
func (o Value[T]) Or(fallback Value[T]) Value[T] {
	if o.set {
		return o
	}
	return fallback
}
