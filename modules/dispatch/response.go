package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roamsafe/alertkit/pkg/binder"
	"github.com/roamsafe/alertkit/pkg/delivery"
	"github.com/roamsafe/alertkit/pkg/emergency"
	"github.com/roamsafe/alertkit/pkg/logger"
	"github.com/roamsafe/alertkit/pkg/notification"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encoding failed", logger.Error(err))
	}
}

// respondError maps core sentinels onto HTTP statuses. Anything unrecognized
// is a 500 with a generic message; internals never leak to callers.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType),
		errors.Is(err, binder.ErrMissingContentType):
		status = http.StatusUnsupportedMediaType
		message = err.Error()

	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParseQuery),
		errors.Is(err, binder.ErrFailedToParsePath):
		status = http.StatusBadRequest
		message = err.Error()

	case errors.Is(err, notification.ErrNotFound),
		errors.Is(err, emergency.ErrBroadcastNotFound):
		status = http.StatusNotFound
		message = err.Error()

	case errors.Is(err, notification.ErrInvalidTransition),
		errors.Is(err, notification.ErrRetriesExhausted),
		errors.Is(err, notification.ErrAlreadyExists),
		errors.Is(err, emergency.ErrInvalidState):
		status = http.StatusConflict
		message = err.Error()

	case errors.Is(err, emergency.ErrNoRecipients):
		status = http.StatusUnprocessableEntity
		message = err.Error()

	case errors.Is(err, ErrMissingIdentity), isValidationError(err):
		status = http.StatusBadRequest
		message = err.Error()

	default:
		s.logger.Error("request failed", logger.Error(err))
	}

	s.respond(w, status, errorResponse{Error: message})
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		notification.ErrMissingID,
		notification.ErrMissingRecipient,
		notification.ErrInvalidChannel,
		delivery.ErrEmptyRecipients,
		delivery.ErrEmptyChannels,
		emergency.ErrInvalidAudience,
		emergency.ErrMissingZones,
		emergency.ErrMissingChannels,
		emergency.ErrMissingContent,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
