package emergency

import "errors"

var (
	// ErrBroadcastNotFound is returned when no broadcast exists for an ID.
	ErrBroadcastNotFound = errors.New("broadcast not found")

	// ErrInvalidAudience is returned for an unknown audience selector.
	ErrInvalidAudience = errors.New("invalid audience")

	// ErrMissingZones is returned for a geo audience with no zones.
	ErrMissingZones = errors.New("geo audience requires at least one zone")

	// ErrMissingChannels is returned when a broadcast names no channels.
	ErrMissingChannels = errors.New("at least one channel is required")

	// ErrMissingContent is returned when the default language has no
	// content variant.
	ErrMissingContent = errors.New("content for default language is required")

	// ErrNoRecipients is returned when audience resolution yields nobody.
	// The broadcast is marked failed; sending to an empty audience would
	// report a misleading 100% delivery rate.
	ErrNoRecipients = errors.New("audience resolved to zero recipients")

	// ErrInvalidState is returned when an operation does not apply to the
	// broadcast's current state, such as cancelling one already sending.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrAlreadyStarted is returned when the settlement loop is started twice.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrNotStarted is returned when Stop is called before Start.
	ErrNotStarted = errors.New("coordinator not started")
)
