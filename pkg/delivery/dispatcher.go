package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roamsafe/alertkit/pkg/logger"
	"github.com/roamsafe/alertkit/pkg/notification"
)

// defaultMaxAttempts bounds sends per notification unless the request says
// otherwise.
const defaultMaxAttempts = 3

// SendRequest describes one notification to create and deliver.
type SendRequest struct {
	RecipientID string                `json:"recipient_id"`
	Channel     notification.Channel  `json:"channel"`
	Title       string                `json:"title"`
	Body        string                `json:"body"`
	Priority    notification.Priority `json:"priority"`
	BroadcastID string                `json:"broadcast_id,omitempty"`
	MaxAttempts int                   `json:"max_attempts,omitempty"`
}

// Dispatcher is the entry point for creating notifications. It persists them
// as pending; the Worker picks them up on its next scan. Creation and
// delivery are deliberately decoupled so a provider outage cannot block the
// caller.
type Dispatcher struct {
	storage notification.Storage
	tracker *notification.Tracker
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDispatcher creates a Dispatcher over the given storage and tracker.
func NewDispatcher(storage notification.Storage, tracker *notification.Tracker, opts ...DispatcherOption) *Dispatcher {
	if storage == nil {
		panic("delivery: dispatcher storage cannot be nil")
	}
	if tracker == nil {
		panic("delivery: dispatcher tracker cannot be nil")
	}

	d := &Dispatcher{
		storage: storage,
		tracker: tracker,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send creates a single pending notification and returns it.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) (*notification.Notification, error) {
	n, err := d.build(req)
	if err != nil {
		return nil, err
	}
	if err := d.storage.Create(ctx, *n); err != nil {
		return nil, err
	}

	d.logger.Info("notification queued",
		logger.NotificationID(n.ID),
		logger.RecipientID(n.RecipientID),
		logger.Channel(n.Channel),
	)
	return n, nil
}

// SendBulk creates one pending notification per recipient and channel
// combination: len(recipients) * len(channels) notifications in total, all
// sharing the given broadcast ID. Creation is all-or-nothing per
// notification but not transactional across the batch; the returned slice
// holds everything that was queued before the first error.
func (d *Dispatcher) SendBulk(ctx context.Context, recipients []string, channels []notification.Channel, req SendRequest) ([]notification.Notification, error) {
	if len(recipients) == 0 {
		return nil, ErrEmptyRecipients
	}
	if len(channels) == 0 {
		return nil, ErrEmptyChannels
	}
	for _, ch := range channels {
		if !ch.Valid() {
			return nil, fmt.Errorf("%w: %s", notification.ErrInvalidChannel, ch)
		}
	}

	created := make([]notification.Notification, 0, len(recipients)*len(channels))
	for _, recipientID := range recipients {
		for _, ch := range channels {
			r := req
			r.RecipientID = recipientID
			r.Channel = ch

			n, err := d.build(r)
			if err != nil {
				return created, err
			}
			if err := d.storage.Create(ctx, *n); err != nil {
				return created, err
			}
			created = append(created, *n)
		}
	}

	d.logger.Info("bulk notifications queued",
		logger.BroadcastID(req.BroadcastID),
		slog.Int("recipients", len(recipients)),
		slog.Int("channels", len(channels)),
		slog.Int("total", len(created)),
	)
	return created, nil
}

// Get returns one notification by ID.
func (d *Dispatcher) Get(ctx context.Context, id string) (*notification.Notification, error) {
	return d.storage.Get(ctx, id)
}

// ListByRecipient returns a recipient's notifications, oldest first.
func (d *Dispatcher) ListByRecipient(ctx context.Context, recipientID string) ([]notification.Notification, error) {
	return d.storage.ListByRecipient(ctx, recipientID)
}

// Stats returns aggregated delivery statistics for a broadcast.
func (d *Dispatcher) Stats(ctx context.Context, broadcastID string) (notification.DeliveryStats, error) {
	return d.tracker.StatsFor(ctx, broadcastID)
}

// Retry resets a failed notification back to pending.
func (d *Dispatcher) Retry(ctx context.Context, id string) error {
	return d.tracker.Retry(ctx, id)
}

func (d *Dispatcher) build(req SendRequest) (*notification.Notification, error) {
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	now := time.Now()
	n := &notification.Notification{
		ID:          uuid.NewString(),
		RecipientID: req.RecipientID,
		BroadcastID: req.BroadcastID,
		Channel:     req.Channel,
		Title:       req.Title,
		Body:        req.Body,
		Priority:    req.Priority,
		Status:      notification.StatusPending,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if n.RecipientID == "" {
		return nil, notification.ErrMissingRecipient
	}
	if !n.Channel.Valid() {
		return nil, fmt.Errorf("%w: %s", notification.ErrInvalidChannel, n.Channel)
	}
	return n, nil
}
