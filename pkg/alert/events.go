package alert

import (
	"time"

	"github.com/google/uuid"
)

// Inbound events consumed from external collaborators. The core never
// originates these; it reacts to them.

// AlertCreated is emitted by the dashboard or the detection pipeline
// when a new alert must be distributed.
type AlertCreated struct {
	Type          Type     `json:"type"`
	Severity      Severity `json:"severity"`
	AffectedZones []string `json:"affected_zones,omitempty"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
}

// EmergencyRequested is emitted when a tourist triggers an SOS.
type EmergencyRequested struct {
	TouristID string   `json:"tourist_id"`
	Location  Location `json:"location"`
	Type      Type     `json:"type"`
}

// Alert materializes the event into a distribution-ready alert with a fresh
// ID and timestamp.
func (e AlertCreated) Alert() Alert {
	return Alert{
		ID:            uuid.NewString(),
		Type:          e.Type,
		Severity:      e.Severity,
		Title:         e.Title,
		Body:          e.Body,
		AffectedZones: e.AffectedZones,
		CreatedAt:     time.Now(),
	}
}

// Location is a geographic point attached to SOS events and geo-targeted
// broadcasts.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IdentityVerified is emitted by the auth collaborator once a realtime
// connection has presented a valid identity token.
type IdentityVerified struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
	Role         Role   `json:"role"`
}

// Topic names the typed message variants carried on the realtime surface.
type Topic string

const (
	TopicAlertNew            Topic = "alert:new"
	TopicAlertEmergency      Topic = "alert:emergency"
	TopicLocationSOS         Topic = "location:sos"
	TopicTouristStatusChange Topic = "tourist:status_change"
	TopicSystemStatus        Topic = "system:status"
)

// Envelope is the outbound realtime message format. The payload is one of the
// closed set of variants named by Topic; consumers switch on Topic rather than
// inspect the payload shape.
type Envelope struct {
	Topic     Topic     `json:"topic"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnvelope stamps an envelope with the current time.
func NewEnvelope(topic Topic, payload any) Envelope {
	return Envelope{Topic: topic, Payload: payload, Timestamp: time.Now()}
}

// TopicFor maps an alert to its realtime topic. SOS alerts surface as
// location events so responder dashboards can plot them.
func TopicFor(a Alert) Topic {
	switch {
	case a.Type == TypeSOS:
		return TopicLocationSOS
	case a.IsEmergencyClass() || a.Severity == SeverityCritical:
		return TopicAlertEmergency
	default:
		return TopicAlertNew
	}
}
