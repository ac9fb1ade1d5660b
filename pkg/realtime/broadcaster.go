package realtime

import (
	"log/slog"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/logger"
	"github.com/roamsafe/alertkit/pkg/registry"
	"github.com/roamsafe/alertkit/pkg/targeting"
)

// Broadcaster pushes messages to every connection subscribed to a room.
//
// This path is fire-and-forget for already-connected sessions: it never waits
// for acknowledgment, never retries, and never blocks on a slow consumer. A
// connection whose buffer is full (or that disconnects mid-publish) simply
// misses the message; the channel delivery workers own durable delivery.
type Broadcaster struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithLogger sets the logger for the Broadcaster.
func WithLogger(log *slog.Logger) Option {
	return func(b *Broadcaster) {
		if log != nil {
			b.logger = log
		}
	}
}

// New creates a Broadcaster over the given registry.
func New(reg *registry.Registry, opts ...Option) *Broadcaster {
	if reg == nil {
		panic("realtime: registry cannot be nil")
	}
	b := &Broadcaster{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers an envelope to every current member of a room and returns
// the number of connections that accepted it. Dropped sends are logged at
// debug level only; a missed best-effort delivery is not a failure.
func (b *Broadcaster) Publish(room string, env alert.Envelope) int {
	delivered := 0
	for _, conn := range b.registry.Connections(room) {
		if conn.TrySend(env) {
			delivered++
		} else {
			b.logger.Debug("realtime send dropped",
				logger.Room(room),
				logger.ConnectionID(conn.ID()),
			)
		}
	}
	return delivered
}

// PublishAlert resolves the alert's rooms and publishes its envelope to each,
// delivering at most once per connection even when rooms overlap.
//
// Critical-severity alerts additionally publish to the emergency and tourists
// rooms regardless of resolver output, so responders are never silently
// excluded by a routing gap.
func (b *Broadcaster) PublishAlert(a alert.Alert) int {
	rooms := targeting.ResolveRooms(a)
	if a.Severity == alert.SeverityCritical {
		rooms = appendMissing(rooms, registry.RoomEmergency, registry.RoomTourists)
	}

	env := alert.NewEnvelope(alert.TopicFor(a), a)

	seen := make(map[string]struct{})
	delivered := 0
	for _, room := range rooms {
		for _, conn := range b.registry.Connections(room) {
			if _, dup := seen[conn.ID()]; dup {
				continue
			}
			seen[conn.ID()] = struct{}{}
			if conn.TrySend(env) {
				delivered++
			}
		}
	}

	b.logger.Debug("alert published",
		slog.String("alert_type", string(a.Type)),
		slog.Int("rooms", len(rooms)),
		slog.Int("delivered", delivered),
	)
	return delivered
}

// PublishSOS pushes an SOS event to the rooms that coordinate a response:
// emergency, responders, dashboard and staff. The payload is the raw event so
// responder dashboards can plot the location without a second lookup.
func (b *Broadcaster) PublishSOS(ev alert.EmergencyRequested) int {
	env := alert.NewEnvelope(alert.TopicLocationSOS, ev)

	delivered := 0
	seen := make(map[string]struct{})
	for _, room := range []string{registry.RoomEmergency, registry.RoomResponders, registry.RoomDashboard, registry.RoomStaff} {
		for _, conn := range b.registry.Connections(room) {
			if _, dup := seen[conn.ID()]; dup {
				continue
			}
			seen[conn.ID()] = struct{}{}
			if conn.TrySend(env) {
				delivered++
			}
		}
	}

	b.logger.Debug("sos published",
		slog.String("tourist_id", ev.TouristID),
		slog.Int("delivered", delivered),
	)
	return delivered
}

func appendMissing(rooms []string, extra ...string) []string {
	for _, room := range extra {
		found := false
		for _, existing := range rooms {
			if existing == room {
				found = true
				break
			}
		}
		if !found {
			rooms = append(rooms, room)
		}
	}
	return rooms
}
