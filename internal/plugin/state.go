package plugin

// State represents the lifecycle state of a registered plugin.
type State int

// Plugin states.
const (
	// StateInstalling - Install is running; the plugin is not yet scheduled.
	StateInstalling State = iota

	// StateEnabled - Plugin is enabled and receives Update every frame.
	StateEnabled

	// StateDisabled - Plugin is disabled. Visual plugins still receive
	// Update so they can animate out.
	StateDisabled

	// StateDestroyed - Destroy has run. No further hooks are called.
	StateDestroyed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// IsInstalled returns true if the plugin is past Install and not destroyed.
func (s State) IsInstalled() bool {
	return s == StateEnabled || s == StateDisabled
}
