package statemachine

import "errors"

var (
	// ErrTransitionNotFound is returned when the current state has no edge
	// for the fired event.
	ErrTransitionNotFound = errors.New("no transition for event")

	// ErrGuardRejected is returned when a guard vetoes an otherwise valid
	// transition.
	ErrGuardRejected = errors.New("transition rejected by guard")

	// ErrDuplicateTransition is returned when two transitions share the
	// same state and event.
	ErrDuplicateTransition = errors.New("duplicate transition")
)
