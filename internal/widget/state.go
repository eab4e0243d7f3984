package widget

import (
	"errors"
	"fmt"
)

// State is the widget lifecycle state.
type State int

// Lifecycle states.
const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateError
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateLoading:       "loading",
	StateReady:         "ready",
	StateError:         "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown widget state %q", text)
}

// Errors recorded as the widget's last error.
var (
	ErrMountPointMissing = errors.New("wishes mount point not found")
	ErrMalformed         = errors.New("wishes response has an invalid format")
	ErrAlreadyStarted    = errors.New("widget already initialized")
)
