package emergency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/delivery"
	"github.com/roamsafe/alertkit/pkg/directory"
	"github.com/roamsafe/alertkit/pkg/logger"
	"github.com/roamsafe/alertkit/pkg/notification"
	"github.com/roamsafe/alertkit/pkg/statemachine"
)

// Lifecycle events for the broadcast state machine.
const (
	eventSchedule statemachine.Event = "schedule"
	eventExecute  statemachine.Event = "execute"
	eventComplete statemachine.Event = "complete"
	eventCancel   statemachine.Event = "cancel"
	eventFail     statemachine.Event = "fail"
)

// broadcastTransitions is the full lifecycle: draft, scheduled, sending,
// then one of sent, cancelled or failed. Cancellation is allowed only
// before sending starts; messages already handed to providers cannot be
// recalled.
var broadcastTransitions = []statemachine.Transition{
	{From: statemachine.State(StatusDraft), To: statemachine.State(StatusScheduled), Event: eventSchedule},
	{From: statemachine.State(StatusDraft), To: statemachine.State(StatusSending), Event: eventExecute},
	{From: statemachine.State(StatusScheduled), To: statemachine.State(StatusSending), Event: eventExecute},
	{From: statemachine.State(StatusSending), To: statemachine.State(StatusSent), Event: eventComplete},
	{From: statemachine.State(StatusSending), To: statemachine.State(StatusFailed), Event: eventFail},
	{From: statemachine.State(StatusDraft), To: statemachine.State(StatusCancelled), Event: eventCancel},
	{From: statemachine.State(StatusScheduled), To: statemachine.State(StatusCancelled), Event: eventCancel},
}

// AudienceSource lists every profile eligible for broadcast targeting.
type AudienceSource interface {
	All(ctx context.Context) ([]directory.Profile, error)
}

// Announcer pushes the broadcast as a realtime alert to connected clients
// in parallel with channel delivery.
type Announcer interface {
	PublishAlert(a alert.Alert) int
}

// CreateRequest describes a new broadcast.
type CreateRequest struct {
	Audience        Audience               `json:"audience"`
	Criteria        Criteria               `json:"criteria"`
	Channels        []notification.Channel `json:"channels"`
	DefaultLanguage string                 `json:"default_language"`
	Content         map[string]Content     `json:"content"`
	Priority        notification.Priority  `json:"priority"`
	CreatedBy       string                 `json:"created_by,omitempty"`
}

// Coordinator owns the emergency broadcast lifecycle: creation, audience
// resolution, the notification fan-out and status aggregation.
type Coordinator struct {
	dispatcher *delivery.Dispatcher
	source     AudienceSource
	announcer  Announcer
	poolSize   int
	logger     *slog.Logger

	settleEvery time.Duration

	mu         sync.Mutex
	broadcasts map[string]*Broadcast
	cancel     context.CancelFunc
	done       chan struct{}
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithAnnouncer also publishes executed broadcasts to realtime clients.
func WithAnnouncer(a Announcer) CoordinatorOption {
	return func(c *Coordinator) {
		c.announcer = a
	}
}

// WithFanOutPoolSize bounds concurrent per-recipient notification creation.
func WithFanOutPoolSize(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithSettleInterval sets how often the background loop sweeps sending
// broadcasts.
func WithSettleInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.settleEvery = d
		}
	}
}

// WithCoordinatorLogger sets the logger for the Coordinator.
func WithCoordinatorLogger(log *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewCoordinator creates a Coordinator over the dispatcher and audience
// source.
func NewCoordinator(dispatcher *delivery.Dispatcher, source AudienceSource, opts ...CoordinatorOption) *Coordinator {
	if dispatcher == nil {
		panic("emergency: coordinator dispatcher cannot be nil")
	}
	if source == nil {
		panic("emergency: coordinator audience source cannot be nil")
	}

	c := &Coordinator{
		dispatcher:  dispatcher,
		source:      source,
		poolSize:    8,
		settleEvery: 30 * time.Second,
		logger:      slog.Default(),
		broadcasts:  make(map[string]*Broadcast),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create validates and stores a draft broadcast.
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (*Broadcast, error) {
	if !req.Audience.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAudience, req.Audience)
	}
	if req.Audience == AudienceGeo && len(req.Criteria.Zones) == 0 {
		return nil, ErrMissingZones
	}
	if len(req.Channels) == 0 {
		return nil, ErrMissingChannels
	}
	for _, ch := range req.Channels {
		if !ch.Valid() {
			return nil, fmt.Errorf("%w: %s", notification.ErrInvalidChannel, ch)
		}
	}
	lang := req.DefaultLanguage
	if lang == "" {
		lang = "en"
	}
	content, ok := req.Content[lang]
	if !ok || content.Title == "" && content.Body == "" {
		return nil, ErrMissingContent
	}

	now := time.Now()
	b := &Broadcast{
		ID:              uuid.NewString(),
		Audience:        req.Audience,
		Criteria:        req.Criteria,
		Channels:        req.Channels,
		DefaultLanguage: lang,
		Content:         req.Content,
		Priority:        req.Priority,
		Status:          StatusDraft,
		CreatedBy:       req.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	c.mu.Lock()
	c.broadcasts[b.ID] = b
	c.mu.Unlock()

	c.logger.Info("broadcast created",
		logger.BroadcastID(b.ID),
		slog.String("audience", string(b.Audience)),
		slog.Int("channels", len(b.Channels)),
	)
	return c.snapshot(b.ID)
}

// Schedule moves a draft broadcast to scheduled for the given time.
func (c *Coordinator) Schedule(ctx context.Context, id string, at time.Time) (*Broadcast, error) {
	err := c.transition(ctx, id, eventSchedule, func(b *Broadcast) {
		b.ScheduledAt = &at
	})
	if err != nil {
		return nil, err
	}
	return c.snapshot(id)
}

// Cancel aborts a broadcast that has not started sending.
func (c *Coordinator) Cancel(ctx context.Context, id string) (*Broadcast, error) {
	if err := c.transition(ctx, id, eventCancel, nil); err != nil {
		return nil, err
	}

	c.logger.Info("broadcast cancelled", logger.BroadcastID(id))
	return c.snapshot(id)
}

// Execute resolves the audience and fans the broadcast out: one
// notification per recipient and channel, each localized to the recipient's
// preferred language. A zero-recipient audience fails the broadcast. The
// broadcast stays sending until Refresh observes every notification in a
// sent or terminal state.
func (c *Coordinator) Execute(ctx context.Context, id string) (*Broadcast, error) {
	if err := c.transition(ctx, id, eventExecute, func(b *Broadcast) {
		now := time.Now()
		b.ExecutedAt = &now
	}); err != nil {
		return nil, err
	}

	b, err := c.snapshot(id)
	if err != nil {
		return nil, err
	}

	recipients, err := c.resolveAudience(ctx, *b)
	if err == nil && len(recipients) == 0 {
		err = ErrNoRecipients
	}
	if err != nil {
		ferr := c.transition(ctx, id, eventFail, func(b *Broadcast) {
			b.Error = err.Error()
		})
		if ferr != nil {
			return nil, errors.Join(err, ferr)
		}
		c.logger.Error("broadcast execution failed", logger.BroadcastID(id), logger.Error(err))
		return nil, err
	}

	c.fanOut(ctx, b, recipients)

	if err := c.update(id, func(b *Broadcast) {
		b.RecipientCount = len(recipients)
	}); err != nil {
		return nil, err
	}

	if c.announcer != nil {
		content := b.ContentFor(b.DefaultLanguage)
		c.announcer.PublishAlert(alert.Alert{
			ID:            b.ID,
			Type:          alert.TypeEmergency,
			Severity:      alert.SeverityCritical,
			Title:         content.Title,
			Body:          content.Body,
			AffectedZones: b.Criteria.Zones,
			CreatedAt:     time.Now(),
		})
	}

	c.logger.Info("broadcast executing",
		logger.BroadcastID(id),
		slog.Int("recipients", len(recipients)),
		slog.Int("channels", len(b.Channels)),
	)
	return c.snapshot(id)
}

// Get returns a copy of the broadcast.
func (c *Coordinator) Get(ctx context.Context, id string) (*Broadcast, error) {
	return c.snapshot(id)
}

// List returns copies of all broadcasts, newest first not guaranteed.
func (c *Coordinator) List(ctx context.Context) []Broadcast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Broadcast, 0, len(c.broadcasts))
	for _, b := range c.broadcasts {
		out = append(out, *b)
	}
	return out
}

// Stats aggregates delivery outcomes for the broadcast and settles its
// state: a sending broadcast whose notifications have all left pending
// becomes sent.
func (c *Coordinator) Stats(ctx context.Context, id string) (notification.DeliveryStats, error) {
	b, err := c.snapshot(id)
	if err != nil {
		return notification.DeliveryStats{}, err
	}

	stats, err := c.dispatcher.Stats(ctx, id)
	if err != nil {
		return notification.DeliveryStats{}, err
	}

	if b.Status == StatusSending && stats.Total > 0 && stats.Pending == 0 {
		if err := c.transition(ctx, id, eventComplete, nil); err == nil {
			c.logger.Info("broadcast settled",
				logger.BroadcastID(id),
				slog.Int("delivered", stats.Delivered+stats.Read),
				slog.Int("failed", stats.Failed),
			)
		}
	}
	return stats, nil
}

// Settle sweeps every sending broadcast through a stats read so its
// lifecycle converges even when no caller polls.
func (c *Coordinator) Settle(ctx context.Context) {
	for _, b := range c.List(ctx) {
		if b.Status != StatusSending {
			continue
		}
		if _, err := c.Stats(ctx, b.ID); err != nil {
			c.logger.Error("settle broadcast", logger.BroadcastID(b.ID), logger.Error(err))
		}
	}
}

// Start launches the background settlement loop.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx)
	return nil
}

// Stop halts the settlement loop and waits for an in-progress sweep.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()
	<-done
	return nil
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.settleEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Settle(ctx)
		}
	}
}

// resolveAudience filters the directory against the broadcast's audience
// and criteria.
func (c *Coordinator) resolveAudience(ctx context.Context, b Broadcast) ([]directory.Profile, error) {
	all, err := c.source.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]directory.Profile, 0, len(all))
	for _, p := range all {
		if matchesAudience(b, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matchesAudience(b Broadcast, p directory.Profile) bool {
	switch b.Audience {
	case AudienceAll:
	case AudienceTourists:
		if p.Role != string(alert.RoleTourist) {
			return false
		}
	case AudienceAuthorities:
		switch alert.Role(p.Role) {
		case alert.RoleStaff, alert.RoleEmergencyResponder, alert.RoleTourismDepartment, alert.RoleAdmin:
		default:
			return false
		}
	case AudienceEmergencyContacts:
		if p.Role != string(alert.RoleEmergencyResponder) {
			return false
		}
	case AudienceGeo:
		if !slices.Contains(b.Criteria.Zones, p.Zone) {
			return false
		}
	default:
		return false
	}

	if len(b.Criteria.Languages) > 0 && !slices.Contains(b.Criteria.Languages, p.Language) {
		return false
	}
	return true
}

// fanOut creates notifications for every recipient and channel through a
// bounded worker pool. Individual failures are logged and skipped; one bad
// recipient must not sink an emergency broadcast.
func (c *Coordinator) fanOut(ctx context.Context, b *Broadcast, recipients []directory.Profile) {
	languages := b.Languages()
	sem := make(chan struct{}, c.poolSize)
	var wg sync.WaitGroup

	for _, p := range recipients {
		sem <- struct{}{}
		wg.Add(1)
		go func(p directory.Profile) {
			defer wg.Done()
			defer func() { <-sem }()

			content := b.ContentFor(directory.MatchLanguage(languages, p.Language))
			for _, ch := range b.Channels {
				_, err := c.dispatcher.Send(ctx, delivery.SendRequest{
					RecipientID: p.ID,
					Channel:     ch,
					Title:       content.Title,
					Body:        content.Body,
					Priority:    b.Priority,
					BroadcastID: b.ID,
				})
				if err != nil {
					c.logger.Error("queue broadcast notification",
						logger.BroadcastID(b.ID),
						logger.RecipientID(p.ID),
						logger.Channel(ch),
						logger.Error(err),
					)
				}
			}
		}(p)
	}
	wg.Wait()
}

// transition fires a lifecycle event for the broadcast and applies mutate
// under the same lock when the transition commits.
func (c *Coordinator) transition(ctx context.Context, id string, event statemachine.Event, mutate func(*Broadcast)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.broadcasts[id]
	if !ok {
		return ErrBroadcastNotFound
	}

	m := statemachine.MustNew(statemachine.State(b.Status), broadcastTransitions...)
	if err := m.Fire(ctx, event, b); err != nil {
		if errors.Is(err, statemachine.ErrTransitionNotFound) {
			return fmt.Errorf("%w: %s while %s", ErrInvalidState, event, b.Status)
		}
		return err
	}

	b.Status = Status(m.Current())
	b.UpdatedAt = time.Now()
	if mutate != nil {
		mutate(b)
	}
	return nil
}

func (c *Coordinator) update(id string, mutate func(*Broadcast)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.broadcasts[id]
	if !ok {
		return ErrBroadcastNotFound
	}
	mutate(b)
	b.UpdatedAt = time.Now()
	return nil
}

func (c *Coordinator) snapshot(id string) (*Broadcast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.broadcasts[id]
	if !ok {
		return nil, ErrBroadcastNotFound
	}
	out := *b
	return &out, nil
}
