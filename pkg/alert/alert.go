package alert

import (
	"time"
)

// Type classifies an alert by its origin and handling rules.
type Type string

const (
	TypeEmergency Type = "emergency" // life-safety incident reported by staff or detection
	TypeSOS       Type = "sos"       // panic button pressed by a tourist
	TypeWeather   Type = "weather"   // weather advisory
	TypeTraffic   Type = "traffic"   // traffic/road advisory
	TypeGeofence  Type = "geofence"  // tourist entered/left a restricted zone
	TypeAnomaly   Type = "anomaly"   // behavioural anomaly flagged by detection
	TypeSafety    Type = "safety"    // general safety notice
)

// Severity grades how urgently an alert must reach its audience.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// Role identifies the class of a verified connection holder.
type Role string

const (
	RoleTourist            Role = "tourist"
	RoleStaff              Role = "staff"
	RoleEmergencyResponder Role = "emergency_responder"
	RoleTourismDepartment  Role = "tourism_department"
	RoleAdmin              Role = "admin"
)

// Alert is a single distribution intent entering the pipeline.
// It carries no delivery state; Notifications own that.
type Alert struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	Severity      Severity  `json:"severity"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AffectedZones []string  `json:"affected_zones,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsEmergencyClass reports whether the alert type belongs to the
// emergency class that must always reach responders.
func (a Alert) IsEmergencyClass() bool {
	return a.Type == TypeEmergency || a.Type == TypeSOS
}

// IsAdvisory reports whether the alert is a tourist-facing advisory.
func (a Alert) IsAdvisory() bool {
	return a.Type == TypeWeather || a.Type == TypeTraffic
}
