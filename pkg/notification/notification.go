package notification

import (
	"time"
)

// Channel is a delivery medium with its own gateway and failure semantics.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Valid reports whether the channel is one of the known delivery media.
func (c Channel) Valid() bool {
	switch c {
	case ChannelPush, ChannelSMS, ChannelEmail:
		return true
	}
	return false
}

// Status is the delivery state of a single notification.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends the notification's lifecycle.
// Delivered notifications may still advance to read, but never regress.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusRead || s == StatusFailed
}

// canTransition encodes the monotonic status machine:
// pending → sent → delivered → read, with failed reachable from
// pending and sent. Everything else, including any regression,
// is rejected; the only sanctioned reset is Tracker.Retry.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusSent || to == StatusFailed
	case StatusSent:
		return to == StatusDelivered || to == StatusFailed
	case StatusDelivered:
		return to == StatusRead
	}
	return false
}

// Priority orders notifications within a channel's queue.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// Notification is the atomic, tracked unit of one message to one recipient
// over one channel. Status is mutated only through the Tracker.
type Notification struct {
	ID          string   `json:"id"`
	RecipientID string   `json:"recipient_id"`
	BroadcastID string   `json:"broadcast_id,omitempty"` // back-reference, not ownership
	Channel     Channel  `json:"channel"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	// Attempts counts sends started; storage increments it on every claim.
	Attempts    int `json:"attempts"`
	MaxAttempts int `json:"max_attempts"`

	// NextRetryAt is set while the notification waits in the retry queue.
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	// LockedUntil marks an in-flight send so no second worker claims the
	// notification; an expired lock is reclaimable.
	LockedUntil *time.Time `json:"locked_until,omitempty"`

	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
