package delivery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roamsafe/alertkit/pkg/logger"
	"github.com/roamsafe/alertkit/pkg/notification"
)

// ReaperConfig configures the stale-notification sweep.
type ReaperConfig struct {
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1m"`
	MaxAge   time.Duration `env:"REAPER_MAX_AGE" envDefault:"30m"`
}

// Reaper fails notifications stuck in a non-terminal state past MaxAge.
// This is the safety net behind crashed workers and lost provider
// callbacks: without it a wedged notification would report pending forever
// and delivery statistics would never converge.
type Reaper struct {
	storage notification.Storage
	tracker *notification.Tracker
	cfg     ReaperConfig
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReaper creates a Reaper over the given storage and tracker.
func NewReaper(storage notification.Storage, tracker *notification.Tracker, cfg ReaperConfig, log *slog.Logger) *Reaper {
	if storage == nil {
		panic("delivery: reaper storage cannot be nil")
	}
	if tracker == nil {
		panic("delivery: reaper tracker cannot be nil")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{storage: storage, tracker: tracker, cfg: cfg, logger: log}
}

// Start launches the periodic sweep.
func (r *Reaper) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrWorkerAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)
	return nil
}

// Stop halts the sweep and waits for an in-progress pass to finish.
func (r *Reaper) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return ErrWorkerNotStarted
	}
	cancel()
	<-done
	return nil
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep fails every notification that has not advanced within MaxAge.
// Exposed for deployments that prefer an external scheduler over the
// built-in ticker.
func (r *Reaper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.cfg.MaxAge)
	stale, err := r.storage.ListStale(ctx, cutoff)
	if err != nil {
		r.logger.Error("list stale notifications", logger.Error(err))
		return
	}

	for _, n := range stale {
		err := r.tracker.RecordOutcome(ctx, n.ID, notification.StatusFailed, ErrDeliveryTimedOut)
		if err != nil {
			// A racing worker may have advanced it; that is the good case.
			r.logger.Debug("skip stale notification", logger.NotificationID(n.ID), logger.Error(err))
			continue
		}
		r.logger.Warn("stale notification failed by reaper",
			logger.NotificationID(n.ID),
			logger.Channel(n.Channel),
			slog.Time("last_update", n.UpdatedAt),
		)
	}
}
