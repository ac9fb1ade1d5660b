package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// NotificationID records the notification identifier under the key "notification_id".
func NotificationID(id string) slog.Attr {
	return slog.String("notification_id", id)
}

// BroadcastID records the emergency broadcast identifier under the key "broadcast_id".
func BroadcastID(id string) slog.Attr {
	return slog.String("broadcast_id", id)
}

// RecipientID records the recipient identifier under the key "recipient_id".
func RecipientID(id string) slog.Attr {
	return slog.String("recipient_id", id)
}

// ConnectionID records the realtime connection identifier under the key "connection_id".
func ConnectionID(id string) slog.Attr {
	return slog.String("connection_id", id)
}

// Room records a room name under the key "room".
func Room(name string) slog.Attr {
	return slog.String("room", name)
}

// Channel records a delivery channel under the key "channel".
// Accepts any stringer-like channel constant to avoid an import cycle
// with the notification package.
func Channel(ch any) slog.Attr {
	return slog.Any("channel", ch)
}

// Attempt records a delivery attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}
