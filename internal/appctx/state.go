package appctx

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTransition is returned for a transition that is not forward.
var ErrInvalidTransition = errors.New("invalid runtime transition")

// State is a runtime lifecycle state.
type State int

const (
	// StateUninitialized means no runtime exists and none is being built.
	StateUninitialized State = iota
	// StateInitializing means the host is building the runtime.
	StateInitializing
	// StateReady means events may be delivered.
	StateReady
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateInitializing:  "initializing",
	StateReady:         "ready",
}

// String returns the lower-case state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState parses a state name, ignoring case.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown runtime state %q", name)
}

// CanTransition reports whether from → to moves strictly forward.
func CanTransition(from, to State) bool {
	if _, ok := stateNames[from]; !ok {
		return false
	}
	if _, ok := stateNames[to]; !ok {
		return false
	}
	return to > from
}

func checkTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
