package delivery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsafe/alertkit/pkg/delivery"
	"github.com/roamsafe/alertkit/pkg/notification"
)

func newDispatcher() (*delivery.Dispatcher, *notification.MemoryStorage) {
	store := notification.NewMemoryStorage()
	return delivery.NewDispatcher(store, notification.NewTracker(store)), store
}

func TestDispatcher_Send(t *testing.T) {
	t.Parallel()

	disp, store := newDispatcher()
	ctx := context.Background()

	n, err := disp.Send(ctx, delivery.SendRequest{
		RecipientID: "tourist-1",
		Channel:     notification.ChannelPush,
		Title:       "Flood warning",
		Body:        "Move to higher ground",
		Priority:    notification.PriorityUrgent,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, notification.StatusPending, n.Status)
	assert.Equal(t, 3, n.MaxAttempts, "default attempt budget")
	assert.Zero(t, n.Attempts)

	stored, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flood warning", stored.Title)
}

func TestDispatcher_SendValidation(t *testing.T) {
	t.Parallel()

	disp, _ := newDispatcher()
	ctx := context.Background()

	_, err := disp.Send(ctx, delivery.SendRequest{Channel: notification.ChannelPush})
	assert.ErrorIs(t, err, notification.ErrMissingRecipient)

	_, err = disp.Send(ctx, delivery.SendRequest{RecipientID: "tourist-1", Channel: "pigeon"})
	assert.ErrorIs(t, err, notification.ErrInvalidChannel)
}

func TestDispatcher_SendBulk(t *testing.T) {
	t.Parallel()

	disp, store := newDispatcher()
	ctx := context.Background()

	recipients := []string{"tourist-1", "tourist-2", "tourist-3"}
	channels := []notification.Channel{notification.ChannelPush, notification.ChannelSMS}

	created, err := disp.SendBulk(ctx, recipients, channels, delivery.SendRequest{
		Title:       "Storm approaching",
		Body:        "Seek shelter",
		BroadcastID: "bc-1",
	})
	require.NoError(t, err)

	// Three recipients on two channels each yield six notifications.
	require.Len(t, created, 6)

	perRecipient := make(map[string]map[notification.Channel]int)
	for _, n := range created {
		assert.Equal(t, "bc-1", n.BroadcastID)
		assert.Equal(t, notification.StatusPending, n.Status)
		if perRecipient[n.RecipientID] == nil {
			perRecipient[n.RecipientID] = make(map[notification.Channel]int)
		}
		perRecipient[n.RecipientID][n.Channel]++
	}
	for _, r := range recipients {
		assert.Equal(t, 1, perRecipient[r][notification.ChannelPush])
		assert.Equal(t, 1, perRecipient[r][notification.ChannelSMS])
	}

	byBroadcast, err := store.ListByBroadcast(ctx, "bc-1")
	require.NoError(t, err)
	assert.Len(t, byBroadcast, 6)
}

func TestDispatcher_SendBulkValidation(t *testing.T) {
	t.Parallel()

	disp, _ := newDispatcher()
	ctx := context.Background()

	_, err := disp.SendBulk(ctx, nil, []notification.Channel{notification.ChannelPush}, delivery.SendRequest{})
	assert.ErrorIs(t, err, delivery.ErrEmptyRecipients)

	_, err = disp.SendBulk(ctx, []string{"tourist-1"}, nil, delivery.SendRequest{})
	assert.ErrorIs(t, err, delivery.ErrEmptyChannels)

	_, err = disp.SendBulk(ctx, []string{"tourist-1"}, []notification.Channel{"pigeon"}, delivery.SendRequest{})
	assert.ErrorIs(t, err, notification.ErrInvalidChannel)
}

func TestDispatcher_Stats(t *testing.T) {
	t.Parallel()

	disp, _ := newDispatcher()
	ctx := context.Background()

	_, err := disp.SendBulk(ctx, []string{"a", "b"}, []notification.Channel{notification.ChannelPush}, delivery.SendRequest{
		BroadcastID: "bc-9",
	})
	require.NoError(t, err)

	stats, err := disp.Stats(ctx, "bc-9")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Pending)
}
