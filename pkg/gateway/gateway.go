package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/roamsafe/alertkit/pkg/notification"
)

// Recipient carries the per-channel contact addresses of one person. A
// gateway reads only the address for its own channel; a missing address is a
// permanent failure since retrying cannot conjure one.
type Recipient struct {
	ID          string `json:"id"`
	DeviceToken string `json:"device_token,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Message is the channel-agnostic content handed to a gateway. Gateways
// apply their own formatting constraints, such as SMS length limits.
type Message struct {
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	Priority notification.Priority `json:"priority"`
}

// Gateway delivers one message to one recipient over one channel. A nil
// return means the provider accepted the message, not that the recipient
// received it; delivery confirmations arrive asynchronously.
//
// Errors wrapping ErrPermanent must not be retried. Everything else is
// treated as transient.
type Gateway interface {
	Channel() notification.Channel
	Send(ctx context.Context, rcpt Recipient, msg Message) error
}

var (
	// ErrPermanent marks failures that no retry can fix, such as a missing
	// or malformed contact address or a provider rejection.
	ErrPermanent = errors.New("permanent delivery failure")

	// ErrMissingAddress is returned when the recipient has no contact
	// address for the gateway's channel. Wraps ErrPermanent.
	ErrMissingAddress = fmt.Errorf("%w: recipient has no address for channel", ErrPermanent)

	// ErrProviderUnavailable is returned on transport failures and
	// provider-side errors worth retrying.
	ErrProviderUnavailable = errors.New("delivery provider unavailable")

	// ErrInvalidConfig is returned when gateway configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid gateway configuration")
)

// IsPermanent reports whether the delivery error must not be retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}
