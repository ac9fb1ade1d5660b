package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roamsafe/alertkit/pkg/gateway"
)

func validEmailConfig() gateway.EmailConfig {
	return gateway.EmailConfig{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "alerts@roamsafe.example",
		ReplyToEmail:         "support@roamsafe.example",
	}
}

func TestNewEmailGateway_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*gateway.EmailConfig)
	}{
		{"missing server token", func(c *gateway.EmailConfig) { c.PostmarkServerToken = "" }},
		{"missing account token", func(c *gateway.EmailConfig) { c.PostmarkAccountToken = "" }},
		{"missing sender", func(c *gateway.EmailConfig) { c.SenderEmail = "" }},
		{"malformed sender", func(c *gateway.EmailConfig) { c.SenderEmail = "not-an-email" }},
		{"malformed reply-to", func(c *gateway.EmailConfig) { c.ReplyToEmail = "@nope" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validEmailConfig()
			tt.mutate(&cfg)
			_, err := gateway.NewEmailGateway(cfg)
			assert.ErrorIs(t, err, gateway.ErrInvalidConfig)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		g, err := gateway.NewEmailGateway(validEmailConfig())
		assert.NoError(t, err)
		assert.NotNil(t, g)
	})
}
