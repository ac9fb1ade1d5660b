package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/registry"
)

// SystemStatus is the payload of periodic system:status envelopes pushed to
// the dashboard room.
type SystemStatus struct {
	Connections int       `json:"connections"`
	Rooms       int       `json:"rooms"`
	At          time.Time `json:"at"`
}

// Heartbeat periodically publishes a SystemStatus envelope to the dashboard
// room. It replaces ad-hoc polling loops with an explicit, stoppable task.
type Heartbeat struct {
	broadcaster *Broadcaster
	registry    *registry.Registry
	interval    time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// HeartbeatConfig holds heartbeat tuning, loadable from the environment.
type HeartbeatConfig struct {
	Interval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`
}

// NewHeartbeat creates a heartbeat task. A non-positive interval falls back
// to the 30s default.
func NewHeartbeat(b *Broadcaster, reg *registry.Registry, cfg HeartbeatConfig) *Heartbeat {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Heartbeat{
		broadcaster: b,
		registry:    reg,
		interval:    interval,
	}
}

// Start launches the heartbeat loop. Calling Start on a running heartbeat is
// a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}

	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})

	go h.run(ctx)
}

// Stop terminates the loop and waits for it to exit.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	done := h.done
	h.cancel = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (h *Heartbeat) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.publish()
		}
	}
}

func (h *Heartbeat) publish() {
	status := SystemStatus{
		Connections: h.registry.ConnectionCount(),
		Rooms:       h.registry.RoomCount(),
		At:          time.Now(),
	}
	h.broadcaster.Publish(registry.RoomDashboard, alert.NewEnvelope(alert.TopicSystemStatus, status))
}
