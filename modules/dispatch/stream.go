package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/binder"
	"github.com/roamsafe/alertkit/pkg/logger"
)

// sseKeepAliveInterval is how often an idle stream sends a comment frame so
// proxies do not reap the connection.
const sseKeepAliveInterval = 15 * time.Second

// ErrMissingIdentity is returned when a stream request carries no verified
// identity.
var ErrMissingIdentity = errors.New("user_id and role are required")

type streamRequest struct {
	ConnectionID string   `query:"connection_id"`
	UserID       string   `query:"user_id"`
	Role         string   `query:"role"`
	Rooms        []string `query:"rooms"`
}

type connectedPayload struct {
	ConnectionID string   `json:"connection_id"`
	Rooms        []string `json:"rooms"`
}

// stream is the SSE subscribe endpoint. The connection auto-joins the rooms
// its role implies; extra rooms come from the rooms query parameter. Each
// envelope becomes one SSE frame with the topic as the event name.
func (s *Service) stream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	if err := binder.Query()(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.UserID == "" || req.Role == "" {
		s.respondError(w, ErrMissingIdentity)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respond(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	conn := s.registry.Register(alert.IdentityVerified{
		ConnectionID: req.ConnectionID,
		UserID:       req.UserID,
		Role:         alert.Role(req.Role),
	})
	// Identity-aware cleanup: a reconnect reusing the same connection ID
	// replaces this session, and the replacement must survive our unwind.
	defer s.registry.DeregisterConnection(conn)

	for _, room := range req.Rooms {
		if err := s.registry.JoinRoom(conn.ID(), room); err != nil {
			s.logger.Warn("room join failed",
				logger.ConnectionID(conn.ID()),
				logger.Room(room),
				logger.Error(err),
			)
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSSE(w, "connected", connectedPayload{
		ConnectionID: conn.ID(),
		Rooms:        s.registry.RoomsOf(conn.ID()),
	})
	flusher.Flush()

	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
			s.registry.Touch(conn.ID())

		case env, open := <-conn.Receive():
			// The channel closes when a reconnect replaces this
			// session or the registry shuts down.
			if !open {
				return
			}
			writeSSE(w, string(env.Topic), env)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
