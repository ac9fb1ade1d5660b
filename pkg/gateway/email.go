package gateway

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/roamsafe/alertkit/pkg/notification"
)

// EmailConfig configures the Postmark-backed email gateway.
type EmailConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN,required"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN,required"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL,required"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// EmailGateway delivers alert emails through Postmark's transactional API.
type EmailGateway struct {
	client *postmark.Client
	config EmailConfig
}

// NewEmailGateway creates a Postmark-backed email gateway. All tokens and
// addresses are validated up front so a misconfigured service fails at
// startup instead of on the first emergency.
func NewEmailGateway(cfg EmailConfig) (*EmailGateway, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.ReplyToEmail) {
		return nil, fmt.Errorf("%w: ReplyToEmail must be a valid email address", ErrInvalidConfig)
	}

	return &EmailGateway{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

func (g *EmailGateway) Channel() notification.Channel { return notification.ChannelEmail }

// Send delivers the message as a transactional email. Postmark hard
// rejections (invalid address, inactive recipient) are permanent; API and
// transport errors are transient.
func (g *EmailGateway) Send(ctx context.Context, rcpt Recipient, msg Message) error {
	if rcpt.Email == "" {
		return fmt.Errorf("%w: email", ErrMissingAddress)
	}
	if !emailRegex.MatchString(rcpt.Email) {
		return fmt.Errorf("%w: invalid recipient email address", ErrPermanent)
	}

	resp, err := g.client.SendEmail(ctx, postmark.Email{
		From:     g.config.SenderEmail,
		ReplyTo:  g.config.ReplyToEmail,
		To:       rcpt.Email,
		Subject:  msg.Title,
		Tag:      "alert",
		HTMLBody: renderEmailHTML(msg),
		TextBody: msg.Body,
	})
	if err != nil {
		return errors.Join(ErrProviderUnavailable, err)
	}
	if resp.ErrorCode > 0 {
		// Postmark 300-range codes are request rejections, not outages.
		if resp.ErrorCode >= 300 && resp.ErrorCode < 400 {
			return fmt.Errorf("%w: postmark rejected email: %d - %s", ErrPermanent, resp.ErrorCode, resp.Message)
		}
		return fmt.Errorf("%w: postmark error: %d - %s", ErrProviderUnavailable, resp.ErrorCode, resp.Message)
	}
	return nil
}

// renderEmailHTML wraps the message in a minimal self-contained layout.
// Content is escaped; alert text is never trusted as markup.
func renderEmailHTML(msg Message) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">`)
	b.WriteString("<h2>")
	b.WriteString(html.EscapeString(msg.Title))
	b.WriteString("</h2><p>")
	for i, line := range strings.Split(msg.Body, "\n") {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(line))
	}
	b.WriteString("</p></div>")
	return b.String()
}
