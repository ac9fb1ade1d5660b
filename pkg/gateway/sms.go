package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/roamsafe/alertkit/pkg/notification"
)

// SMSConfig configures the SMS gateway.
type SMSConfig struct {
	Endpoint   string        `env:"SMS_ENDPOINT,required"`
	APIKey     string        `env:"SMS_API_KEY,required"`
	SenderName string        `env:"SMS_SENDER_NAME" envDefault:"ALERT"`
	Timeout    time.Duration `env:"SMS_TIMEOUT" envDefault:"10s"`
}

// smsMaxRunes bounds the rendered text to a single concatenated-message
// budget; providers split longer texts unpredictably across networks.
const smsMaxRunes = 320

// ErrInvalidPhone is returned when a recipient's phone number cannot be
// normalized to E.164. Always wraps ErrPermanent.
var ErrInvalidPhone = errors.New("phone number is not valid E.164")

var phoneStrip = regexp.MustCompile(`[\s\-().]`)

// NormalizePhone converts a phone number to E.164 form: a leading plus and
// 8 to 15 digits. An international 00 prefix is rewritten to a plus;
// spaces, dashes, dots and parentheses are stripped.
func NormalizePhone(raw string) (string, error) {
	s := phoneStrip.ReplaceAllString(strings.TrimSpace(raw), "")
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	if !strings.HasPrefix(s, "+") {
		return "", fmt.Errorf("%w: %w: missing country code", ErrPermanent, ErrInvalidPhone)
	}

	digits := s[1:]
	if len(digits) < 8 || len(digits) > 15 {
		return "", fmt.Errorf("%w: %w: expected 8 to 15 digits", ErrPermanent, ErrInvalidPhone)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %w: non-digit character", ErrPermanent, ErrInvalidPhone)
		}
	}
	return s, nil
}

// SMSGateway delivers text messages through an HTTP SMS provider.
type SMSGateway struct {
	endpoint string
	apiKey   string
	sender   string
	timeout  time.Duration
	client   *http.Client
}

// NewSMSGateway creates an SMS gateway from config.
func NewSMSGateway(cfg SMSConfig) (*SMSGateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: SMS endpoint is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: SMS API key is required", ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SMSGateway{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		sender:   cfg.SenderName,
		timeout:  timeout,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (g *SMSGateway) Channel() notification.Channel { return notification.ChannelSMS }

type smsRequest struct {
	To     string `json:"to"`
	From   string `json:"from"`
	Text   string `json:"text"`
	Urgent bool   `json:"urgent,omitempty"`
}

// Send normalizes the phone number, renders title and body into one text
// and posts it to the provider.
func (g *SMSGateway) Send(ctx context.Context, rcpt Recipient, msg Message) error {
	if rcpt.Phone == "" {
		return fmt.Errorf("%w: sms", ErrMissingAddress)
	}
	phone, err := NormalizePhone(rcpt.Phone)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(smsRequest{
		To:     phone,
		From:   g.sender,
		Text:   RenderSMSText(msg.Title, msg.Body),
		Urgent: msg.Priority >= notification.PriorityHigh,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal sms payload: %w", ErrPermanent, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("User-Agent", "alertkit-sms/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return errors.Join(ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: sms provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: sms provider rejected message: %d", ErrPermanent, resp.StatusCode)
	default:
		return fmt.Errorf("%w: sms provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	}
}

// RenderSMSText joins title and body into "TITLE: body" and truncates to the
// message budget on a rune boundary, appending an ellipsis when cut.
func RenderSMSText(title, body string) string {
	text := body
	if title != "" {
		text = strings.ToUpper(title) + ": " + body
	}
	if utf8.RuneCountInString(text) <= smsMaxRunes {
		return text
	}

	runes := []rune(text)
	return string(runes[:smsMaxRunes-1]) + "…"
}
