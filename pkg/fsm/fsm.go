// Package fsm implements the finite state machine that sequences the phases of a monitoring run
package fsm

import (
	"fmt"
)

// State represents a possible transition state for the FSM
type State string

// Machine is a basic finite state machine
type Machine struct {
	current     State
	initial     State
	allowable   map[State][]State
	stopOnError bool
	stopped     bool
}

// NewMachine returns a new Machine with configured options.  If you do not utilize any
// options, the machine will not have any configured transitions.
func NewMachine(initial State, opts ...MachineOption) (*Machine, error) {
	machine := &Machine{
		current:   initial,
		initial:   initial,
		allowable: map[State][]State{},
	}
	for _, opt := range opts {
		if err := opt(machine); err != nil {
			return nil, err
		}
	}
	return machine, nil
}

// State returns the current state of the Machine
func (m *Machine) State() State {
	return m.current
}

// Allowable checks whether a transition between two states is allowable
func (m *Machine) Allowable(from, to State) bool {
	return contains(to, m.allowable[from])
}

// Transition will change the current state of the machine if it is allowable
func (m *Machine) Transition(to State) error {
	if m.stopOnError && m.stopped {
		return StopError{Msg: "state machine is in stopped state due to unallowable transition"}
	}
	switch m.Allowable(m.current, to) {
	case true:
		m.current = to
		return nil
	default:
		m.stopped = true
		return TransitionNotAllowed{Msg: fmt.Sprintf("cannot transition from state %s to %s", m.current, to)}
	}
}

// Reset will reset the machine to its initial state and remove any stop condition if it
// exists
func (m *Machine) Reset() {
	m.current = m.initial
	m.stopped = false
}

func contains(s State, all []State) bool {
	for _, a := range all {
		if s == a {
			return true
		}
	}
	return false
}
