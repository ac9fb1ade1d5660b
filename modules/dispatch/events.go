package dispatch

import (
	"net/http"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/binder"
)

// alertCreated takes an alert from the dashboard or the detection pipeline
// and pushes it to every room its targeting resolves. Realtime publish is
// best-effort; the delivered count only reflects currently connected
// sessions.
func (s *Service) alertCreated(w http.ResponseWriter, r *http.Request) {
	var ev alert.AlertCreated
	if err := binder.JSON()(r, &ev); err != nil {
		s.respondError(w, err)
		return
	}

	a := ev.Alert()
	delivered := s.broadcaster.PublishAlert(a)
	s.respond(w, http.StatusAccepted, map[string]any{
		"alert_id":  a.ID,
		"delivered": delivered,
	})
}

func (s *Service) emergencyRequested(w http.ResponseWriter, r *http.Request) {
	var ev alert.EmergencyRequested
	if err := binder.JSON()(r, &ev); err != nil {
		s.respondError(w, err)
		return
	}

	delivered := s.broadcaster.PublishSOS(ev)
	s.respond(w, http.StatusAccepted, map[string]any{
		"delivered": delivered,
	})
}
