package targeting

import (
	"sort"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/registry"
)

// ResolveRooms maps an alert to the set of rooms that must receive it.
//
// The function is total: every alert type yields a non-empty set. The base
// operational rooms (staff, dashboard) are always present, so an unknown
// alert type degrades to an operator-visible broadcast rather than silence.
// The result is deduplicated and sorted for deterministic fan-out.
func ResolveRooms(a alert.Alert) []string {
	rooms := map[string]struct{}{
		registry.RoomStaff:     {},
		registry.RoomDashboard: {},
	}

	switch {
	case a.IsEmergencyClass():
		rooms[registry.RoomEmergency] = struct{}{}
		rooms[registry.RoomTourists] = struct{}{}
	case a.IsAdvisory():
		rooms[registry.RoomTourists] = struct{}{}
		rooms[registry.RoomTourism] = struct{}{}
	}

	for _, zone := range a.AffectedZones {
		if zone == "" {
			continue
		}
		rooms[registry.RoomForZone(zone)] = struct{}{}
	}

	out := make([]string, 0, len(rooms))
	for room := range rooms {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}
