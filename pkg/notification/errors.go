package notification

import "errors"

var (
	// ErrNotFound is returned when a notification is not in storage.
	ErrNotFound = errors.New("notification not found")

	// ErrAlreadyExists is returned when creating a duplicate notification ID.
	ErrAlreadyExists = errors.New("notification already exists")

	// ErrInvalidTransition is returned for a status change that would
	// violate the monotonic lifecycle.
	ErrInvalidTransition = errors.New("invalid notification status transition")

	// ErrRetriesExhausted is returned when a retry would exceed the
	// notification's attempt budget.
	ErrRetriesExhausted = errors.New("notification retries exhausted")

	// ErrMissingID is returned when a notification has no ID.
	ErrMissingID = errors.New("notification ID is required")

	// ErrMissingRecipient is returned when a notification has no recipient.
	ErrMissingRecipient = errors.New("notification recipient is required")

	// ErrInvalidChannel is returned for an unknown delivery channel.
	ErrInvalidChannel = errors.New("invalid notification channel")
)
