package delivery

import "errors"

var (
	// ErrNoGateway is returned when a notification's channel has no
	// registered gateway.
	ErrNoGateway = errors.New("no gateway registered for channel")

	// ErrWorkerAlreadyStarted is returned when Start is called twice.
	ErrWorkerAlreadyStarted = errors.New("worker already started")

	// ErrWorkerNotStarted is returned when Stop is called before Start.
	ErrWorkerNotStarted = errors.New("worker not started")

	// ErrDeliveryTimedOut marks notifications failed by the reaper after
	// sitting in a non-terminal state past the staleness window.
	ErrDeliveryTimedOut = errors.New("delivery timed out")

	// ErrEmptyRecipients is returned when a bulk send names no recipients.
	ErrEmptyRecipients = errors.New("at least one recipient is required")

	// ErrEmptyChannels is returned when a bulk send names no channels.
	ErrEmptyChannels = errors.New("at least one channel is required")
)
