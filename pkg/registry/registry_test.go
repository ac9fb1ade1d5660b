package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/registry"
)

func register(r *registry.Registry, userID string, role alert.Role) *registry.Connection {
	return r.Register(alert.IdentityVerified{UserID: userID, Role: role})
}

func TestRegister_AutoJoinByRole(t *testing.T) {
	tests := []struct {
		name  string
		role  alert.Role
		rooms []string
	}{
		{
			name:  "tourist joins tourists and personal room",
			role:  alert.RoleTourist,
			rooms: []string{"tourists", "tourist:u-1"},
		},
		{
			name:  "responder joins emergency rooms",
			role:  alert.RoleEmergencyResponder,
			rooms: []string{"emergency", "responders", "alerts"},
		},
		{
			name:  "staff joins operational rooms",
			role:  alert.RoleStaff,
			rooms: []string{"staff", "dashboard"},
		},
		{
			name:  "unknown role joins nothing",
			role:  alert.Role("visitor"),
			rooms: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := registry.New()
			conn := register(r, "u-1", tt.role)

			assert.ElementsMatch(t, tt.rooms, r.RoomsOf(conn.ID()))
		})
	}
}

func TestJoinRoom_Idempotent(t *testing.T) {
	r := registry.New()
	conn := register(r, "u-1", alert.RoleStaff)

	require.NoError(t, r.JoinRoom(conn.ID(), "zone:Z1"))
	before := len(r.MembersOf("zone:Z1"))

	require.NoError(t, r.JoinRoom(conn.ID(), "zone:Z1"))

	assert.Len(t, r.MembersOf("zone:Z1"), before)
	assert.Equal(t, 1, before)
}

func TestJoinRoom_UnknownConnection(t *testing.T) {
	r := registry.New()
	err := r.JoinRoom("missing", "staff")
	assert.ErrorIs(t, err, registry.ErrConnectionNotFound)
}

func TestLeaveRoom(t *testing.T) {
	r := registry.New()
	conn := register(r, "u-1", alert.RoleStaff)

	require.NoError(t, r.LeaveRoom(conn.ID(), "staff"))
	assert.Empty(t, r.MembersOf("staff"))
	assert.NotContains(t, r.RoomsOf(conn.ID()), "staff")

	// Leaving again is a no-op.
	require.NoError(t, r.LeaveRoom(conn.ID(), "staff"))
}

func TestDeregister_RemovesFromAllRooms(t *testing.T) {
	r := registry.New()
	conn := register(r, "u-1", alert.RoleEmergencyResponder)
	require.NoError(t, r.JoinRoom(conn.ID(), "zone:Z9"))

	r.Deregister(conn.ID())

	assert.Empty(t, r.MembersOf("emergency"))
	assert.Empty(t, r.MembersOf("responders"))
	assert.Empty(t, r.MembersOf("zone:Z9"))
	assert.Equal(t, 0, r.ConnectionCount())
	// Empty rooms disappear entirely.
	assert.Equal(t, 0, r.RoomCount())

	// The receive channel is closed so transports can unwind.
	_, open := <-conn.Receive()
	assert.False(t, open)
}

func TestDeregister_Unknown(t *testing.T) {
	r := registry.New()
	assert.NotPanics(t, func() { r.Deregister("missing") })
}

func TestRegister_ReplacesStaleSession(t *testing.T) {
	r := registry.New()
	first := r.Register(alert.IdentityVerified{ConnectionID: "c-1", UserID: "u-1", Role: alert.RoleTourist})
	second := r.Register(alert.IdentityVerified{ConnectionID: "c-1", UserID: "u-1", Role: alert.RoleTourist})

	assert.Equal(t, 1, r.ConnectionCount())

	// The first session's channel is closed; the second is live.
	_, open := <-first.Receive()
	assert.False(t, open)

	got, ok := r.Get("c-1")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestDeregisterConnection_StaleSessionLeavesReplacementAlive(t *testing.T) {
	r := registry.New()
	stale := r.Register(alert.IdentityVerified{ConnectionID: "c-1", UserID: "u-1", Role: alert.RoleTourist})
	fresh := r.Register(alert.IdentityVerified{ConnectionID: "c-1", UserID: "u-1", Role: alert.RoleTourist})

	// The stale handler unwinds after its channel closed; its cleanup must
	// not destroy the replacement session.
	r.DeregisterConnection(stale)

	got, ok := r.Get("c-1")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.ElementsMatch(t, []string{"c-1"}, r.MembersOf("tourists"))
	assert.True(t, fresh.TrySend(alert.NewEnvelope(alert.TopicAlertNew, "still here")))

	// The replacement's own cleanup still works.
	r.DeregisterConnection(fresh)
	_, ok = r.Get("c-1")
	assert.False(t, ok)
	assert.Empty(t, r.MembersOf("tourists"))
}

func TestDeregisterConnection_CurrentSession(t *testing.T) {
	r := registry.New()
	conn := register(r, "u-1", alert.RoleEmergencyResponder)
	require.NoError(t, r.JoinRoom(conn.ID(), "zone:Z9"))

	r.DeregisterConnection(conn)

	assert.Equal(t, 0, r.ConnectionCount())
	assert.Empty(t, r.MembersOf("zone:Z9"))
	_, open := <-conn.Receive()
	assert.False(t, open)
}

func TestDeregisterConnection_Nil(t *testing.T) {
	r := registry.New()
	assert.NotPanics(t, func() { r.DeregisterConnection(nil) })
}

func TestMembersOf_Snapshot(t *testing.T) {
	r := registry.New()
	a := register(r, "u-1", alert.RoleTourist)
	b := register(r, "u-2", alert.RoleTourist)

	members := r.MembersOf("tourists")
	assert.ElementsMatch(t, []string{a.ID(), b.ID()}, members)
}

func TestConnection_TrySendDropsWhenFull(t *testing.T) {
	r := registry.New(registry.WithBufferSize(1))
	conn := register(r, "u-1", alert.RoleTourist)

	require.True(t, conn.TrySend(alert.NewEnvelope(alert.TopicAlertNew, "first")))

	// Second send must not block; it is dropped.
	assert.False(t, conn.TrySend(alert.NewEnvelope(alert.TopicAlertNew, "second")))

	got := <-conn.Receive()
	assert.Equal(t, "first", got.Payload)
}

func TestConnection_TrySendAfterClose(t *testing.T) {
	r := registry.New()
	conn := register(r, "u-1", alert.RoleTourist)
	r.Deregister(conn.ID())

	assert.False(t, conn.TrySend(alert.NewEnvelope(alert.TopicAlertNew, "late")))
}
