package engine

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No active track, device silent
	StatePlaying              // Active track producing audio
	StatePaused               // Active track held, position frozen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
