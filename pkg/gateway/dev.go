package gateway

import (
	"context"
	"log/slog"

	"github.com/roamsafe/alertkit/pkg/logger"
	"github.com/roamsafe/alertkit/pkg/notification"
)

// DevGateway implements Gateway for local development. It logs every send
// instead of contacting a provider, so the full delivery pipeline runs
// without push, SMS or email credentials.
type DevGateway struct {
	channel notification.Channel
	logger  *slog.Logger
}

// NewDevGateway creates a logging gateway for the given channel.
func NewDevGateway(channel notification.Channel, log *slog.Logger) *DevGateway {
	if log == nil {
		log = slog.Default()
	}
	return &DevGateway{channel: channel, logger: log}
}

func (g *DevGateway) Channel() notification.Channel { return g.channel }

// Send logs the message. Address checks still apply so development catches
// missing contact data the same way production would.
func (g *DevGateway) Send(ctx context.Context, rcpt Recipient, msg Message) error {
	if err := g.checkAddress(rcpt); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "dev gateway send",
		logger.Channel(g.channel),
		logger.RecipientID(rcpt.ID),
		slog.String("title", msg.Title),
	)
	return nil
}

func (g *DevGateway) checkAddress(rcpt Recipient) error {
	switch g.channel {
	case notification.ChannelPush:
		if rcpt.DeviceToken == "" {
			return ErrMissingAddress
		}
	case notification.ChannelSMS:
		if rcpt.Phone == "" {
			return ErrMissingAddress
		}
		if _, err := NormalizePhone(rcpt.Phone); err != nil {
			return err
		}
	case notification.ChannelEmail:
		if rcpt.Email == "" {
			return ErrMissingAddress
		}
	}
	return nil
}
