package plugin

// EventHandler handles registry events.
// Handlers must be non-blocking and should not call back into the Registry
// to avoid deadlocks. Panics in handlers are recovered.
type EventHandler func(event Event)

// Event represents a registry lifecycle event.
type Event struct {
	Type   EventType
	Plugin string
	Err    error
}

// EventType is the type of registry event.
type EventType int

const (
	// EventInstalled is emitted after a plugin's Install succeeds.
	EventInstalled EventType = iota
	// EventEnabled is emitted when a plugin is enabled.
	EventEnabled
	// EventDisabled is emitted when a plugin is disabled.
	EventDisabled
	// EventDestroyed is emitted after a plugin's Destroy has run.
	EventDestroyed
	// EventFault is emitted when a plugin hook fails.
	EventFault
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventInstalled:
		return "installed"
	case EventEnabled:
		return "enabled"
	case EventDisabled:
		return "disabled"
	case EventDestroyed:
		return "destroyed"
	case EventFault:
		return "fault"
	default:
		return "unknown"
	}
}
