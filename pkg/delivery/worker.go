package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roamsafe/alertkit/pkg/directory"
	"github.com/roamsafe/alertkit/pkg/gateway"
	"github.com/roamsafe/alertkit/pkg/logger"
	"github.com/roamsafe/alertkit/pkg/notification"
)

// Worker drains the pending notification queue: it periodically claims due
// notifications, resolves each recipient's contact profile and hands the
// message to the channel's gateway. Outcomes flow back through the Tracker,
// which decides between sent, retry and terminal failure.
type Worker struct {
	storage   notification.Storage
	tracker   *notification.Tracker
	directory directory.Lookup
	gateways  map[notification.Channel]gateway.Gateway
	backoff   Backoff

	pollInterval time.Duration
	lockFor      time.Duration
	sendTimeout  time.Duration
	batchSize    int
	sem          chan struct{}
	logger       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithPollInterval sets how often the worker scans for due notifications.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithBatchSize bounds how many notifications one scan claims.
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithMaxConcurrent bounds in-flight sends across all channels.
func WithMaxConcurrent(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.sem = make(chan struct{}, n)
		}
	}
}

// WithSendTimeout bounds a single gateway send.
func WithSendTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.sendTimeout = d
		}
	}
}

// WithLockDuration sets how long a claimed notification stays invisible to
// other workers. Must exceed the send timeout or a slow send can be claimed
// twice.
func WithLockDuration(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.lockFor = d
		}
	}
}

// WithBackoff sets the retry delay strategy.
func WithBackoff(b Backoff) WorkerOption {
	return func(w *Worker) {
		if b != nil {
			w.backoff = b
		}
	}
}

// WithWorkerLogger sets the logger for the worker.
func WithWorkerLogger(log *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if log != nil {
			w.logger = log
		}
	}
}

// NewWorker creates a delivery worker over the given storage, tracker and
// recipient directory. Gateways are registered separately so deployments
// choose their channel mix.
func NewWorker(storage notification.Storage, tracker *notification.Tracker, dir directory.Lookup, opts ...WorkerOption) *Worker {
	if storage == nil {
		panic("delivery: worker storage cannot be nil")
	}
	if tracker == nil {
		panic("delivery: worker tracker cannot be nil")
	}
	if dir == nil {
		panic("delivery: worker directory cannot be nil")
	}

	w := &Worker{
		storage:      storage,
		tracker:      tracker,
		directory:    dir,
		gateways:     make(map[notification.Channel]gateway.Gateway),
		backoff:      DefaultBackoff(),
		pollInterval: time.Second,
		lockFor:      time.Minute,
		sendTimeout:  10 * time.Second,
		batchSize:    10,
		sem:          make(chan struct{}, 4),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RegisterGateway adds a channel gateway. A second gateway for the same
// channel replaces the first. Safe to call while the worker is running;
// in-flight sends keep the gateway they resolved.
func (w *Worker) RegisterGateway(g gateway.Gateway) {
	if g == nil {
		return
	}
	w.mu.Lock()
	w.gateways[g.Channel()] = g
	w.mu.Unlock()
}

func (w *Worker) gateway(ch notification.Channel) (gateway.Gateway, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	gw, ok := w.gateways[ch]
	return gw, ok
}

// Start launches the polling loop. Gateways must be registered first.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrWorkerAlreadyStarted
	}
	if len(w.gateways) == 0 {
		return ErrNoGateway
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(ctx)

	w.logger.Info("delivery worker started",
		slog.Duration("poll_interval", w.pollInterval),
		slog.Int("batch_size", w.batchSize),
		slog.Int("max_concurrent", cap(w.sem)),
	)
	return nil
}

// Stop halts polling and waits for in-flight sends to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return ErrWorkerNotStarted
	}
	cancel()
	<-done
	w.wg.Wait()
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims one batch of due notifications and dispatches them. Each
// send holds a semaphore slot so a slow provider cannot pile up goroutines.
func (w *Worker) drain(ctx context.Context) {
	claimed, err := w.storage.ClaimDue(ctx, time.Now(), w.batchSize, w.lockFor)
	if err != nil {
		w.logger.Error("claim due notifications", logger.Error(err))
		return
	}

	for _, n := range claimed {
		select {
		case w.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		w.wg.Add(1)
		go func(n notification.Notification) {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			w.process(ctx, n)
		}(n)
	}
}

func (w *Worker) process(ctx context.Context, n notification.Notification) {
	gw, ok := w.gateway(n.Channel)
	if !ok {
		w.fail(ctx, n, fmt.Errorf("%w: %s", ErrNoGateway, n.Channel))
		return
	}

	rcpt, err := w.resolveRecipient(ctx, n.RecipientID)
	if err != nil {
		// No profile means no address on any channel; retrying cannot help.
		w.fail(ctx, n, err)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	err = gw.Send(sendCtx, *rcpt, gateway.Message{
		Title:    n.Title,
		Body:     n.Body,
		Priority: n.Priority,
	})
	cancel()

	switch {
	case err == nil:
		if rerr := w.tracker.RecordOutcome(ctx, n.ID, notification.StatusSent, nil); rerr != nil {
			w.logger.Error("record sent", logger.NotificationID(n.ID), logger.Error(rerr))
		}
		w.logger.Debug("notification handed to provider",
			logger.NotificationID(n.ID),
			logger.Channel(n.Channel),
			logger.Attempt(n.Attempts),
		)

	case gateway.IsPermanent(err):
		w.fail(ctx, n, err)

	default:
		w.retry(ctx, n, err)
	}
}

func (w *Worker) retry(ctx context.Context, n notification.Notification, cause error) {
	// n.Attempts already counts the send that just failed.
	delay := w.backoff.NextDelay(n.Attempts)
	err := w.tracker.Requeue(ctx, n.ID, cause, delay)
	if errors.Is(err, notification.ErrRetriesExhausted) {
		w.fail(ctx, n, fmt.Errorf("%w (after %d attempts)", cause, n.MaxAttempts))
		return
	}
	if err != nil {
		w.logger.Error("requeue notification", logger.NotificationID(n.ID), logger.Error(err))
		return
	}

	w.logger.Warn("notification send failed, scheduled retry",
		logger.NotificationID(n.ID),
		logger.Channel(n.Channel),
		logger.Attempt(n.Attempts),
		slog.Duration("retry_in", delay),
		logger.Error(cause),
	)
}

func (w *Worker) fail(ctx context.Context, n notification.Notification, cause error) {
	if err := w.tracker.RecordOutcome(ctx, n.ID, notification.StatusFailed, cause); err != nil {
		w.logger.Error("record failure", logger.NotificationID(n.ID), logger.Error(err))
		return
	}

	w.logger.Warn("notification failed",
		logger.NotificationID(n.ID),
		logger.Channel(n.Channel),
		logger.Error(cause),
	)
}

func (w *Worker) resolveRecipient(ctx context.Context, id string) (*gateway.Recipient, error) {
	p, err := w.directory.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &gateway.Recipient{
		ID:          p.ID,
		DeviceToken: p.DeviceToken,
		Phone:       p.Phone,
		Email:       p.Email,
		Language:    p.Language,
	}, nil
}
