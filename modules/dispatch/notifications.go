package dispatch

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roamsafe/alertkit/pkg/binder"
	"github.com/roamsafe/alertkit/pkg/delivery"
	"github.com/roamsafe/alertkit/pkg/notification"
)

type bulkSendRequest struct {
	Recipients  []string               `json:"recipients"`
	Channels    []notification.Channel `json:"channels"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	Priority    notification.Priority  `json:"priority"`
	BroadcastID string                 `json:"broadcast_id,omitempty"`
	MaxAttempts int                    `json:"max_attempts,omitempty"`
}

type rejectRequest struct {
	Error string `json:"error"`
}

type idParam struct {
	ID string `path:"id"`
}

func bindID(r *http.Request) (string, error) {
	var p idParam
	if err := binder.Path(chi.URLParam)(r, &p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *Service) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req delivery.SendRequest
	if err := binder.JSON()(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	n, err := s.dispatcher.Send(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusAccepted, n)
}

func (s *Service) sendBulkNotifications(w http.ResponseWriter, r *http.Request) {
	var req bulkSendRequest
	if err := binder.JSON()(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	created, err := s.dispatcher.SendBulk(r.Context(), req.Recipients, req.Channels, delivery.SendRequest{
		Title:       req.Title,
		Body:        req.Body,
		Priority:    req.Priority,
		BroadcastID: req.BroadcastID,
		MaxAttempts: req.MaxAttempts,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusAccepted, map[string]any{
		"created":       created,
		"created_count": len(created),
	})
}

func (s *Service) getMessage(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	n, err := s.dispatcher.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, n)
}

func (s *Service) getMessagesByRecipient(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	list, err := s.dispatcher.ListByRecipient(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"notifications": list,
		"count":         len(list),
	})
}

// retryNotification puts a failed notification back in the pending queue on
// operator request. The attempt budget still applies.
func (s *Service) retryNotification(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.dispatcher.Retry(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusAccepted, nil)
}

// Provider callbacks. Confirm and reject arrive from delivery-status
// webhooks; read receipts arrive from client apps.

func (s *Service) confirmDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.receipts.Confirm(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Service) rejectDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req rejectRequest
	if err := binder.JSON()(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.receipts.Reject(r.Context(), id, providerError(req.Error)); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

// providerError carries the provider's failure string so it lands in the
// notification record verbatim.
type providerError string

func (e providerError) Error() string {
	if e == "" {
		return "delivery rejected by provider"
	}
	return string(e)
}

func (s *Service) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.receipts.MarkRead(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}
