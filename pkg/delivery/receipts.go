package delivery

import (
	"context"
	"errors"

	"github.com/roamsafe/alertkit/pkg/notification"
)

// Receipts handles asynchronous delivery confirmations: provider callbacks
// reporting a handset delivery, and client read receipts.
type Receipts struct {
	tracker *notification.Tracker
}

// NewReceipts creates a Receipts handler over the tracker.
func NewReceipts(tracker *notification.Tracker) *Receipts {
	if tracker == nil {
		panic("delivery: receipts tracker cannot be nil")
	}
	return &Receipts{tracker: tracker}
}

// Confirm records a provider's delivery confirmation. Duplicate
// confirmations are no-ops.
func (r *Receipts) Confirm(ctx context.Context, notificationID string) error {
	return r.tracker.RecordOutcome(ctx, notificationID, notification.StatusDelivered, nil)
}

// Reject records a provider's asynchronous failure report, such as a bounce
// or an unreachable handset.
func (r *Receipts) Reject(ctx context.Context, notificationID string, cause error) error {
	return r.tracker.RecordOutcome(ctx, notificationID, notification.StatusFailed, cause)
}

// MarkRead records a client read receipt. A read receipt implies delivery,
// so a notification still marked sent is bridged through delivered first;
// this covers providers that never send delivery confirmations.
func (r *Receipts) MarkRead(ctx context.Context, notificationID string) error {
	err := r.tracker.RecordOutcome(ctx, notificationID, notification.StatusRead, nil)
	if !errors.Is(err, notification.ErrInvalidTransition) {
		return err
	}

	if err := r.tracker.RecordOutcome(ctx, notificationID, notification.StatusDelivered, nil); err != nil {
		return err
	}
	return r.tracker.RecordOutcome(ctx, notificationID, notification.StatusRead, nil)
}
