package dispatch

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roamsafe/alertkit/pkg/delivery"
	"github.com/roamsafe/alertkit/pkg/emergency"
	"github.com/roamsafe/alertkit/pkg/realtime"
	"github.com/roamsafe/alertkit/pkg/registry"
)

// Service exposes the dispatch HTTP surface: notification APIs, emergency
// broadcast lifecycle, inbound event intake and the SSE stream. It owns no
// state of its own; every handler delegates to the core packages.
type Service struct {
	dispatcher  *delivery.Dispatcher
	receipts    *delivery.Receipts
	coordinator *emergency.Coordinator
	registry    *registry.Registry
	broadcaster *realtime.Broadcaster
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewService wires the dispatch module over the core components.
func NewService(
	dispatcher *delivery.Dispatcher,
	receipts *delivery.Receipts,
	coordinator *emergency.Coordinator,
	reg *registry.Registry,
	broadcaster *realtime.Broadcaster,
	opts ...Option,
) *Service {
	if dispatcher == nil {
		panic("dispatch: dispatcher cannot be nil")
	}
	if receipts == nil {
		panic("dispatch: receipts cannot be nil")
	}
	if coordinator == nil {
		panic("dispatch: coordinator cannot be nil")
	}
	if reg == nil {
		panic("dispatch: registry cannot be nil")
	}
	if broadcaster == nil {
		panic("dispatch: broadcaster cannot be nil")
	}

	s := &Service{
		dispatcher:  dispatcher,
		receipts:    receipts,
		coordinator: coordinator,
		registry:    reg,
		broadcaster: broadcaster,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the module router, ready to mount:
//
//	r := chi.NewRouter()
//	r.Mount("/api/v1", svc.Handle())
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Route("/notifications", func(r chi.Router) {
		r.Post("/", s.sendNotification)
		r.Post("/bulk", s.sendBulkNotifications)
		r.Get("/{id}", s.getMessage)
		r.Post("/{id}/retry", s.retryNotification)
		r.Post("/{id}/delivered", s.confirmDelivery)
		r.Post("/{id}/failed", s.rejectDelivery)
		r.Post("/{id}/read", s.markRead)
	})

	r.Get("/recipients/{id}/notifications", s.getMessagesByRecipient)

	r.Route("/broadcasts", func(r chi.Router) {
		r.Post("/", s.createBroadcast)
		r.Get("/", s.listBroadcasts)
		r.Get("/{id}", s.getBroadcast)
		r.Get("/{id}/stats", s.getDeliveryStats)
		r.Post("/{id}/schedule", s.scheduleBroadcast)
		r.Post("/{id}/execute", s.executeBroadcast)
		r.Post("/{id}/cancel", s.cancelBroadcast)
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/alert", s.alertCreated)
		r.Post("/sos", s.emergencyRequested)
	})

	r.Get("/stream", s.stream)

	return r
}
