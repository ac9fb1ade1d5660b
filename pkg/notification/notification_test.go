package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roamsafe/alertkit/pkg/notification"
)

func TestChannel_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channel notification.Channel
		want    bool
	}{
		{notification.ChannelPush, true},
		{notification.ChannelSMS, true},
		{notification.ChannelEmail, true},
		{notification.Channel("fax"), false},
		{notification.Channel(""), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.channel), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.channel.Valid())
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status notification.Status
		want   bool
	}{
		{notification.StatusPending, false},
		{notification.StatusSent, false},
		{notification.StatusDelivered, true},
		{notification.StatusRead, true},
		{notification.StatusFailed, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.status.Terminal())
		})
	}
}
