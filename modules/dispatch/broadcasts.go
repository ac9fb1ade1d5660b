package dispatch

import (
	"net/http"
	"time"

	"github.com/roamsafe/alertkit/pkg/binder"
	"github.com/roamsafe/alertkit/pkg/emergency"
)

type scheduleRequest struct {
	At time.Time `json:"at"`
}

func (s *Service) createBroadcast(w http.ResponseWriter, r *http.Request) {
	var req emergency.CreateRequest
	if err := binder.JSON()(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	b, err := s.coordinator.Create(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, b)
}

func (s *Service) listBroadcasts(w http.ResponseWriter, r *http.Request) {
	list := s.coordinator.List(r.Context())
	s.respond(w, http.StatusOK, map[string]any{
		"broadcasts": list,
		"count":      len(list),
	})
}

func (s *Service) getBroadcast(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	b, err := s.coordinator.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, b)
}

func (s *Service) getDeliveryStats(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	stats, err := s.coordinator.Stats(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, stats)
}

func (s *Service) scheduleBroadcast(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req scheduleRequest
	if err := binder.JSON()(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	b, err := s.coordinator.Schedule(r.Context(), id, req.At)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, b)
}

// executeBroadcast resolves the audience and fans out notifications. The
// response reports the resolved recipient count; delivery progress is polled
// through the stats endpoint.
func (s *Service) executeBroadcast(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	b, err := s.coordinator.Execute(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusAccepted, b)
}

func (s *Service) cancelBroadcast(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	b, err := s.coordinator.Cancel(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, b)
}
