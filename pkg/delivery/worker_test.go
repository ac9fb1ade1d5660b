package delivery_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsafe/alertkit/pkg/delivery"
	"github.com/roamsafe/alertkit/pkg/directory"
	"github.com/roamsafe/alertkit/pkg/gateway"
	"github.com/roamsafe/alertkit/pkg/notification"
)

// scriptedGateway returns a fixed error per send and records call counts.
type scriptedGateway struct {
	channel notification.Channel
	err     error

	mu    sync.Mutex
	calls int
}

func (g *scriptedGateway) Channel() notification.Channel { return g.channel }

func (g *scriptedGateway) Send(ctx context.Context, rcpt gateway.Recipient, msg gateway.Message) error {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.err
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type workerFixture struct {
	store  *notification.MemoryStorage
	disp   *delivery.Dispatcher
	worker *delivery.Worker
}

func newWorkerFixture(t *testing.T, gw gateway.Gateway) *workerFixture {
	t.Helper()

	store := notification.NewMemoryStorage()
	tracker := notification.NewTracker(store)

	dir := directory.NewMemoryDirectory()
	dir.Upsert(directory.Profile{
		ID:          "tourist-1",
		DeviceToken: "device-1",
		Phone:       "+66812345678",
		Email:       "t1@example.com",
	})

	worker := delivery.NewWorker(store, tracker, dir,
		delivery.WithPollInterval(5*time.Millisecond),
		delivery.WithBackoff(delivery.FixedBackoff{}), // immediate retries
		delivery.WithSendTimeout(100*time.Millisecond),
	)
	worker.RegisterGateway(gw)

	require.NoError(t, worker.Start(context.Background()))
	t.Cleanup(func() { _ = worker.Stop() })

	return &workerFixture{
		store:  store,
		disp:   delivery.NewDispatcher(store, tracker),
		worker: worker,
	}
}

func (f *workerFixture) waitForStatus(t *testing.T, id string, want notification.Status) *notification.Notification {
	t.Helper()

	var got *notification.Notification
	require.Eventually(t, func() bool {
		n, err := f.store.Get(context.Background(), id)
		if err != nil {
			return false
		}
		got = n
		return n.Status == want
	}, 2*time.Second, 5*time.Millisecond, "notification %s never reached %s", id, want)
	return got
}

func TestWorker_SuccessfulSend(t *testing.T) {
	t.Parallel()

	gw := &scriptedGateway{channel: notification.ChannelPush}
	f := newWorkerFixture(t, gw)

	n, err := f.disp.Send(context.Background(), delivery.SendRequest{
		RecipientID: "tourist-1",
		Channel:     notification.ChannelPush,
		Title:       "Earthquake",
		Body:        "Drop, cover, hold on",
	})
	require.NoError(t, err)

	got := f.waitForStatus(t, n.ID, notification.StatusSent)
	assert.Equal(t, 1, got.Attempts)
	assert.Nil(t, got.LockedUntil)
	assert.Equal(t, 1, gw.callCount())
}

func TestWorker_TransientFailureExhaustsBudget(t *testing.T) {
	t.Parallel()

	gw := &scriptedGateway{
		channel: notification.ChannelPush,
		err:     errors.New("provider timeout"),
	}
	f := newWorkerFixture(t, gw)

	n, err := f.disp.Send(context.Background(), delivery.SendRequest{
		RecipientID: "tourist-1",
		Channel:     notification.ChannelPush,
		Body:        "hello",
		MaxAttempts: 3,
	})
	require.NoError(t, err)

	got := f.waitForStatus(t, n.ID, notification.StatusFailed)
	assert.Equal(t, 3, got.Attempts, "budget of 3 means exactly 3 sends")
	assert.Equal(t, 3, gw.callCount())
	assert.Contains(t, got.Error, "provider timeout")
}

func TestWorker_PermanentFailureSkipsRetries(t *testing.T) {
	t.Parallel()

	gw := &scriptedGateway{
		channel: notification.ChannelPush,
		err:     gateway.ErrMissingAddress,
	}
	f := newWorkerFixture(t, gw)

	n, err := f.disp.Send(context.Background(), delivery.SendRequest{
		RecipientID: "tourist-1",
		Channel:     notification.ChannelPush,
		Body:        "hello",
	})
	require.NoError(t, err)

	got := f.waitForStatus(t, n.ID, notification.StatusFailed)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, 1, gw.callCount())
}

func TestWorker_UnknownRecipientFails(t *testing.T) {
	t.Parallel()

	gw := &scriptedGateway{channel: notification.ChannelPush}
	f := newWorkerFixture(t, gw)

	n, err := f.disp.Send(context.Background(), delivery.SendRequest{
		RecipientID: "ghost",
		Channel:     notification.ChannelPush,
		Body:        "hello",
	})
	require.NoError(t, err)

	got := f.waitForStatus(t, n.ID, notification.StatusFailed)
	assert.Zero(t, gw.callCount(), "no profile means nothing to send")
	assert.Contains(t, got.Error, "profile not found")
}

func TestWorker_UnregisteredChannelFails(t *testing.T) {
	t.Parallel()

	gw := &scriptedGateway{channel: notification.ChannelPush}
	f := newWorkerFixture(t, gw)

	n, err := f.disp.Send(context.Background(), delivery.SendRequest{
		RecipientID: "tourist-1",
		Channel:     notification.ChannelSMS,
		Body:        "hello",
	})
	require.NoError(t, err)

	got := f.waitForStatus(t, n.ID, notification.StatusFailed)
	assert.Contains(t, got.Error, "no gateway registered")
}

func TestWorker_RegisterGatewayWhileRunning(t *testing.T) {
	t.Parallel()

	push := &scriptedGateway{channel: notification.ChannelPush}
	f := newWorkerFixture(t, push)

	// The worker is polling; adding a channel mid-flight must be safe and
	// picked up by the next claim.
	sms := &scriptedGateway{channel: notification.ChannelSMS}
	f.worker.RegisterGateway(sms)

	n, err := f.disp.Send(context.Background(), delivery.SendRequest{
		RecipientID: "tourist-1",
		Channel:     notification.ChannelSMS,
		Title:       "Road closed",
		Body:        "Use the bypass",
	})
	require.NoError(t, err)

	f.waitForStatus(t, n.ID, notification.StatusSent)
	assert.Equal(t, 1, sms.callCount())
}

func TestWorker_StartStop(t *testing.T) {
	t.Parallel()

	store := notification.NewMemoryStorage()
	tracker := notification.NewTracker(store)
	worker := delivery.NewWorker(store, tracker, directory.NewMemoryDirectory())

	t.Run("start without gateways", func(t *testing.T) {
		assert.ErrorIs(t, worker.Start(context.Background()), delivery.ErrNoGateway)
	})

	t.Run("stop before start", func(t *testing.T) {
		assert.ErrorIs(t, worker.Stop(), delivery.ErrWorkerNotStarted)
	})

	t.Run("double start", func(t *testing.T) {
		worker.RegisterGateway(&scriptedGateway{channel: notification.ChannelPush})
		require.NoError(t, worker.Start(context.Background()))
		assert.ErrorIs(t, worker.Start(context.Background()), delivery.ErrWorkerAlreadyStarted)
		require.NoError(t, worker.Stop())
	})
}
