package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsafe/alertkit/pkg/gateway"
	"github.com/roamsafe/alertkit/pkg/notification"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"already E.164", "+66812345678", "+66812345678", false},
		{"spaces and dashes", "+66 81-234-5678", "+66812345678", false},
		{"parentheses", "+1 (555) 012-3456", "+15550123456", false},
		{"international 00 prefix", "0066812345678", "+66812345678", false},
		{"missing country code", "0812345678", "", true},
		{"too short", "+6681", "", true},
		{"too long", "+1234567890123456", "", true},
		{"letters", "+6681234abcd", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := gateway.NormalizePhone(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, gateway.IsPermanent(err), "phone errors must be permanent")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderSMSText(t *testing.T) {
	t.Parallel()

	t.Run("joins title and body", func(t *testing.T) {
		t.Parallel()
		got := gateway.RenderSMSText("Flood warning", "Move to higher ground")
		assert.Equal(t, "FLOOD WARNING: Move to higher ground", got)
	})

	t.Run("body only", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "short", gateway.RenderSMSText("", "short"))
	})

	t.Run("truncates long text on a rune boundary", func(t *testing.T) {
		t.Parallel()
		got := gateway.RenderSMSText("Alert", strings.Repeat("ข", 500))
		assert.LessOrEqual(t, utf8.RuneCountInString(got), 320)
		assert.True(t, strings.HasSuffix(got, "…"))
	})
}

func TestSMSGateway_Send(t *testing.T) {
	t.Parallel()

	t.Run("posts normalized payload", func(t *testing.T) {
		t.Parallel()

		var got struct {
			To     string `json:"to"`
			From   string `json:"from"`
			Text   string `json:"text"`
			Urgent bool   `json:"urgent"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		g, err := gateway.NewSMSGateway(gateway.SMSConfig{
			Endpoint:   srv.URL,
			APIKey:     "test-key",
			SenderName: "ALERT",
		})
		require.NoError(t, err)
		assert.Equal(t, notification.ChannelSMS, g.Channel())

		err = g.Send(context.Background(), gateway.Recipient{
			ID:    "tourist-1",
			Phone: "+66 81-234-5678",
		}, gateway.Message{
			Title:    "Flood warning",
			Body:     "Move to higher ground",
			Priority: notification.PriorityUrgent,
		})
		require.NoError(t, err)

		assert.Equal(t, "+66812345678", got.To)
		assert.Equal(t, "ALERT", got.From)
		assert.Equal(t, "FLOOD WARNING: Move to higher ground", got.Text)
		assert.True(t, got.Urgent)
	})

	t.Run("missing phone is permanent", func(t *testing.T) {
		t.Parallel()

		g, err := gateway.NewSMSGateway(gateway.SMSConfig{Endpoint: "http://localhost", APIKey: "k"})
		require.NoError(t, err)

		err = g.Send(context.Background(), gateway.Recipient{ID: "tourist-1"}, gateway.Message{Body: "hi"})
		assert.ErrorIs(t, err, gateway.ErrMissingAddress)
		assert.True(t, gateway.IsPermanent(err))
	})

	t.Run("5xx is transient", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		g, err := gateway.NewSMSGateway(gateway.SMSConfig{Endpoint: srv.URL, APIKey: "k"})
		require.NoError(t, err)

		err = g.Send(context.Background(), gateway.Recipient{Phone: "+66812345678"}, gateway.Message{Body: "hi"})
		assert.ErrorIs(t, err, gateway.ErrProviderUnavailable)
		assert.False(t, gateway.IsPermanent(err))
	})

	t.Run("4xx is permanent", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		g, err := gateway.NewSMSGateway(gateway.SMSConfig{Endpoint: srv.URL, APIKey: "k"})
		require.NoError(t, err)

		err = g.Send(context.Background(), gateway.Recipient{Phone: "+66812345678"}, gateway.Message{Body: "hi"})
		assert.True(t, gateway.IsPermanent(err))
	})
}

func TestNewSMSGateway_Validation(t *testing.T) {
	t.Parallel()

	_, err := gateway.NewSMSGateway(gateway.SMSConfig{APIKey: "k"})
	assert.ErrorIs(t, err, gateway.ErrInvalidConfig)

	_, err = gateway.NewSMSGateway(gateway.SMSConfig{Endpoint: "http://localhost"})
	assert.ErrorIs(t, err, gateway.ErrInvalidConfig)
}
