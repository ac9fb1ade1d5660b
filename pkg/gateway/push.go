package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/roamsafe/alertkit/pkg/notification"
)

// PushConfig configures the push notification gateway.
type PushConfig struct {
	Endpoint string        `env:"PUSH_ENDPOINT,required"`
	APIKey   string        `env:"PUSH_API_KEY,required"`
	Timeout  time.Duration `env:"PUSH_TIMEOUT" envDefault:"10s"`
}

// PushGateway delivers push notifications by posting JSON to the provider's
// HTTP API. The client is reused across sends for connection pooling.
type PushGateway struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

// NewPushGateway creates a push gateway from config. The endpoint must be an
// absolute http or https URL.
func NewPushGateway(cfg PushConfig) (*PushGateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: push endpoint is required", ErrInvalidConfig)
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: push endpoint must be an absolute http(s) URL", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: push API key is required", ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &PushGateway{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
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

func (g *PushGateway) Channel() notification.Channel { return notification.ChannelPush }

type pushRequest struct {
	DeviceToken string `json:"device_token"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Priority    int    `json:"priority"`
}

// Send posts the notification to the push provider. Responses in the 2xx
// range count as accepted. 4xx responses other than 408 and 429 are
// permanent; everything else is transient.
func (g *PushGateway) Send(ctx context.Context, rcpt Recipient, msg Message) error {
	if rcpt.DeviceToken == "" {
		return fmt.Errorf("%w: push", ErrMissingAddress)
	}

	payload, err := json.Marshal(pushRequest{
		DeviceToken: rcpt.DeviceToken,
		Title:       msg.Title,
		Body:        msg.Body,
		Priority:    int(msg.Priority),
	})
	if err != nil {
		return fmt.Errorf("%w: marshal push payload: %w", ErrPermanent, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("User-Agent", "alertkit-push/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return errors.Join(ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	// Drain so the connection returns to the pool.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: push provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: push provider rejected notification: %d", ErrPermanent, resp.StatusCode)
	default:
		return fmt.Errorf("%w: push provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	}
}
