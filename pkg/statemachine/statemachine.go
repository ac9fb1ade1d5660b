package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State is a named state. Comparable so it can key the transition table.
type State string

// Event is a named trigger for a transition.
type Event string

// Guard evaluates whether a transition is allowed right now. All guards on
// a transition must pass.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Action runs side effects before the state change commits. An error aborts
// the transition and leaves the machine in its current state.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Transition declares one edge of the machine.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

type transitionKey struct {
	from  State
	event Event
}

// Machine is a finite state machine with guarded transitions. Safe for
// concurrent use; Fire serializes so two racing events cannot both commit
// from the same state.
type Machine struct {
	mu          sync.Mutex
	current     State
	initial     State
	transitions map[transitionKey]Transition
}

// New creates a machine in the initial state with the given transitions.
// Duplicate (from, event) pairs are rejected.
func New(initial State, transitions ...Transition) (*Machine, error) {
	m := &Machine{
		current:     initial,
		initial:     initial,
		transitions: make(map[transitionKey]Transition, len(transitions)),
	}
	for _, t := range transitions {
		key := transitionKey{from: t.From, event: t.Event}
		if _, exists := m.transitions[key]; exists {
			return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateTransition, t.Event, t.From)
		}
		m.transitions[key] = t
	}
	return m, nil
}

// MustNew is New that panics on error, for static transition tables.
func MustNew(initial State, transitions ...Transition) *Machine {
	m, err := New(initial, transitions...)
	if err != nil {
		panic(err)
	}
	return m
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Fire applies an event. It returns ErrTransitionNotFound when the current
// state has no edge for the event and ErrGuardRejected when a guard vetoes
// it. Action errors abort the transition.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transitions[transitionKey{from: m.current, event: event}]
	if !ok {
		return fmt.Errorf("%w: %s in state %s", ErrTransitionNotFound, event, m.current)
	}

	for _, guard := range t.Guards {
		if !guard(ctx, m.current, event, data) {
			return fmt.Errorf("%w: %s in state %s", ErrGuardRejected, event, m.current)
		}
	}

	for _, action := range t.Actions {
		if err := action(ctx, t.From, t.To, event, data); err != nil {
			return fmt.Errorf("transition action: %w", err)
		}
	}

	m.current = t.To
	return nil
}

// CanFire reports whether the event would pass lookup and guards without
// committing anything. Actions do not run.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transitions[transitionKey{from: m.current, event: event}]
	if !ok {
		return false
	}
	for _, guard := range t.Guards {
		if !guard(ctx, m.current, event, data) {
			return false
		}
	}
	return true
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}
