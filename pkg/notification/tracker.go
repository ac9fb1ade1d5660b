package notification

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/roamsafe/alertkit/pkg/logger"
)

// trackerStripes bounds lock memory while keeping contention negligible:
// two notifications collide only if their IDs hash to the same stripe.
const trackerStripes = 64

// Tracker is the single writer of notification status transitions. Workers,
// the retry scheduler and the read-receipt path all report outcomes here
// instead of mutating status directly, which is what upholds the monotonic
// lifecycle under concurrency.
type Tracker struct {
	storage Storage
	logger  *slog.Logger
	locks   [trackerStripes]sync.Mutex
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerLogger sets the logger for the Tracker.
func WithTrackerLogger(log *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if log != nil {
			t.logger = log
		}
	}
}

// NewTracker creates a Tracker over the given storage.
func NewTracker(storage Storage, opts ...TrackerOption) *Tracker {
	if storage == nil {
		panic("notification: tracker storage cannot be nil")
	}
	t := &Tracker{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) stripe(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &t.locks[h.Sum32()%trackerStripes]
}

// RecordOutcome advances a notification to the given status. The transition
// is validated against the monotonic lifecycle; violations return
// ErrInvalidTransition. Advancing to the current status is a no-op, so
// duplicate gateway callbacks are harmless.
func (t *Tracker) RecordOutcome(ctx context.Context, id string, status Status, cause error) error {
	mu := t.stripe(id)
	mu.Lock()
	defer mu.Unlock()

	n, err := t.storage.Get(ctx, id)
	if err != nil {
		return err
	}

	if n.Status == status {
		return nil
	}
	if !canTransition(n.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Status, status)
	}

	n.Status = status
	n.LockedUntil = nil
	if status != StatusPending {
		n.NextRetryAt = nil
	}
	if cause != nil {
		n.Error = cause.Error()
	}

	if err := t.storage.Update(ctx, *n); err != nil {
		return err
	}

	t.logger.Debug("notification status recorded",
		logger.NotificationID(id),
		logger.Channel(n.Channel),
		slog.String("status", string(status)),
	)
	return nil
}

// Requeue puts a transiently failed notification back in the pending queue
// with a retry time delay from now. The attempt count is not touched here;
// it advances when storage hands the notification to a claimer. Requeue
// returns ErrRetriesExhausted when the attempt budget is spent; the caller
// then records a terminal failure.
func (t *Tracker) Requeue(ctx context.Context, id string, cause error, delay time.Duration) error {
	mu := t.stripe(id)
	mu.Lock()
	defer mu.Unlock()

	n, err := t.storage.Get(ctx, id)
	if err != nil {
		return err
	}

	if n.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Status, StatusPending)
	}
	if n.Attempts >= n.MaxAttempts {
		return ErrRetriesExhausted
	}

	n.Status = StatusPending
	n.LockedUntil = nil
	retryAt := time.Now().Add(delay)
	n.NextRetryAt = &retryAt
	if cause != nil {
		n.Error = cause.Error()
	}

	if err := t.storage.Update(ctx, *n); err != nil {
		return err
	}

	t.logger.Debug("notification requeued",
		logger.NotificationID(id),
		logger.Attempt(n.Attempts),
		slog.Duration("delay", delay),
	)
	return nil
}

// Retry is the explicit operator-triggered reset: a failed notification goes
// back to pending, provided the attempt budget still has room. This is the
// single sanctioned regression from a terminal state.
func (t *Tracker) Retry(ctx context.Context, id string) error {
	mu := t.stripe(id)
	mu.Lock()
	defer mu.Unlock()

	n, err := t.storage.Get(ctx, id)
	if err != nil {
		return err
	}

	if n.Status != StatusFailed {
		return fmt.Errorf("%w: retry from %s", ErrInvalidTransition, n.Status)
	}
	if n.Attempts >= n.MaxAttempts {
		return ErrRetriesExhausted
	}

	n.Status = StatusPending
	n.NextRetryAt = nil
	n.LockedUntil = nil
	n.Error = ""

	return t.storage.Update(ctx, *n)
}

// StatsFor recomputes delivery statistics from a broadcast's owned
// notifications.
func (t *Tracker) StatsFor(ctx context.Context, broadcastID string) (DeliveryStats, error) {
	notifs, err := t.storage.ListByBroadcast(ctx, broadcastID)
	if err != nil {
		return DeliveryStats{}, err
	}
	return ComputeStats(notifs), nil
}
