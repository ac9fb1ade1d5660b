package notification

import (
	"context"
	"time"
)

// Storage persists notifications. Implementations must make ClaimDue atomic:
// a notification returned by one claim call is invisible to concurrent claim
// calls until its lock expires or it is updated.
//
// Status-bearing writes go through the Tracker, which serializes per
// notification; Storage itself only needs whole-record semantics.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, n Notification) error

	// Get retrieves a notification by ID.
	Get(ctx context.Context, id string) (*Notification, error)

	// Update replaces a stored notification.
	Update(ctx context.Context, n Notification) error

	// ClaimDue atomically claims up to limit pending notifications whose
	// retry time has arrived (or that were never scheduled), locking each
	// for lockFor so no concurrent claimer sees it.
	ClaimDue(ctx context.Context, now time.Time, limit int, lockFor time.Duration) ([]Notification, error)

	// ListByBroadcast returns all notifications owned by a broadcast.
	ListByBroadcast(ctx context.Context, broadcastID string) ([]Notification, error)

	// ListByRecipient returns all notifications addressed to a recipient.
	ListByRecipient(ctx context.Context, recipientID string) ([]Notification, error)

	// ListStale returns non-terminal notifications not updated since the
	// cutoff. The reaper sweeps these into failed.
	ListStale(ctx context.Context, cutoff time.Time) ([]Notification, error)
}
