package registry

import (
	"github.com/roamsafe/alertkit/pkg/alert"
)

// Well-known room names. Zone and per-entity rooms are produced by
// RoomForZone and RoomForTourist.
const (
	RoomStaff      = "staff"
	RoomDashboard  = "dashboard"
	RoomEmergency  = "emergency"
	RoomResponders = "responders"
	RoomAlerts     = "alerts"
	RoomTourists   = "tourists"
	RoomTourism    = "tourism"
)

// RoomForZone returns the room carrying alerts scoped to one zone.
func RoomForZone(zoneID string) string { return "zone:" + zoneID }

// RoomForTourist returns the per-entity room addressing a single tourist.
func RoomForTourist(touristID string) string { return "tourist:" + touristID }

// AutoJoinRooms returns the fixed set of rooms a freshly verified connection
// joins, derived purely from its role. An unknown role joins nothing; it can
// still join rooms explicitly.
func AutoJoinRooms(role alert.Role, userID string) []string {
	switch role {
	case alert.RoleTourist:
		return []string{RoomTourists, RoomForTourist(userID)}
	case alert.RoleStaff:
		return []string{RoomStaff, RoomDashboard}
	case alert.RoleEmergencyResponder:
		return []string{RoomEmergency, RoomResponders, RoomAlerts}
	case alert.RoleTourismDepartment:
		return []string{RoomTourism, RoomDashboard, RoomAlerts}
	case alert.RoleAdmin:
		return []string{RoomStaff, RoomDashboard, RoomEmergency, RoomTourists, RoomTourism, RoomAlerts}
	default:
		return nil
	}
}
