package registry

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roamsafe/alertkit/pkg/alert"
	"github.com/roamsafe/alertkit/pkg/logger"
)

// Registry tracks live realtime connections, their identity and their room
// memberships. All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
	// rooms maps room name -> connection ID -> connection. A room with no
	// members is removed from the map; absence is the empty state.
	rooms map[string]map[string]*Connection
	// memberships maps connection ID -> set of joined room names, kept in
	// lockstep with rooms so RoomsOf never scans every room.
	memberships map[string]map[string]struct{}

	bufferSize int
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithBufferSize sets the per-connection outbound buffer size.
func WithBufferSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

// WithLogger sets the logger for the Registry.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.logger = log
		}
	}
}

// New creates an empty connection registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		conns:       make(map[string]*Connection),
		rooms:       make(map[string]map[string]*Connection),
		memberships: make(map[string]map[string]struct{}),
		bufferSize:  64,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates a connection for a verified identity and joins it to the
// fixed set of rooms derived from the role.
func (r *Registry) Register(identity alert.IdentityVerified) *Connection {
	id := identity.ConnectionID
	if id == "" {
		id = uuid.New().String()
	}

	conn := newConnection(id, identity.UserID, identity.Role, r.bufferSize)

	r.mu.Lock()
	// A reconnect reusing the same connection ID replaces the stale session.
	if old, exists := r.conns[id]; exists {
		r.removeLocked(old)
	}
	r.conns[id] = conn
	r.memberships[id] = make(map[string]struct{})
	for _, room := range AutoJoinRooms(identity.Role, identity.UserID) {
		r.joinLocked(conn, room)
	}
	r.mu.Unlock()

	r.logger.Debug("connection registered",
		logger.ConnectionID(id),
		slog.String("user_id", identity.UserID),
		slog.String("role", string(identity.Role)),
	)
	return conn
}

// Deregister destroys a connection, removing it from every room it belongs
// to. Deregistering an unknown connection is a no-op.
func (r *Registry) Deregister(connID string) {
	r.mu.Lock()
	conn, exists := r.conns[connID]
	if exists {
		r.removeLocked(conn)
	}
	r.mu.Unlock()

	if exists {
		r.logger.Debug("connection deregistered", logger.ConnectionID(connID))
	}
}

// DeregisterConnection destroys the given session only if it is still the
// registered one for its ID. A handler unwinding after a reconnect replaced
// its session must not tear down the replacement, so cleanup paths that hold
// a *Connection use this instead of the ID-keyed Deregister.
func (r *Registry) DeregisterConnection(conn *Connection) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	current, owns := r.conns[conn.ID()]
	owns = owns && current == conn
	if owns {
		r.removeLocked(conn)
	}
	r.mu.Unlock()

	if owns {
		r.logger.Debug("connection deregistered", logger.ConnectionID(conn.ID()))
	}
}

// JoinRoom subscribes a connection to a room. Joining a room the connection
// is already in is a no-op.
func (r *Registry) JoinRoom(connID, room string) error {
	if room == "" {
		return ErrEmptyRoomName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return ErrConnectionNotFound
	}
	r.joinLocked(conn, room)
	conn.touch()
	return nil
}

// LeaveRoom removes a connection from a room. Leaving a room the connection
// is not in is a no-op.
func (r *Registry) LeaveRoom(connID, room string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return ErrConnectionNotFound
	}
	r.leaveLocked(conn, room)
	conn.touch()
	return nil
}

// MembersOf returns the IDs of connections currently subscribed to a room.
// An unknown or empty room yields an empty slice.
func (r *Registry) MembersOf(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.rooms[room]))
	for id := range r.rooms[room] {
		members = append(members, id)
	}
	return members
}

// Connections returns the live connections subscribed to a room. The slice is
// a snapshot; connections may deregister after it is taken, which callers
// treat as a missed best-effort delivery.
func (r *Registry) Connections(room string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.rooms[room]))
	for _, c := range r.rooms[room] {
		conns = append(conns, c)
	}
	return conns
}

// RoomsOf returns the room names a connection has joined.
func (r *Registry) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.memberships[connID]))
	for room := range r.memberships[connID] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Get returns a live connection by ID.
func (r *Registry) Get(connID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	return conn, ok
}

// Touch records activity on a connection, bumping its last-activity time.
func (r *Registry) Touch(connID string) {
	r.mu.RLock()
	conn, ok := r.conns[connID]
	r.mu.RUnlock()
	if ok {
		conn.touch()
	}
}

// ConnectionCount returns the number of live connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// RoomCount returns the number of rooms with at least one member.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Close deregisters every connection. Used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, conn := range r.conns {
		r.removeLocked(conn)
	}
}

func (r *Registry) joinLocked(conn *Connection, room string) {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]*Connection)
		r.rooms[room] = members
	}
	members[conn.id] = conn
	r.memberships[conn.id][room] = struct{}{}
}

func (r *Registry) leaveLocked(conn *Connection, room string) {
	if members, ok := r.rooms[room]; ok {
		delete(members, conn.id)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(r.memberships[conn.id], room)
}

func (r *Registry) removeLocked(conn *Connection) {
	for room := range r.memberships[conn.id] {
		if members, ok := r.rooms[room]; ok {
			delete(members, conn.id)
			if len(members) == 0 {
				delete(r.rooms, room)
			}
		}
	}
	delete(r.memberships, conn.id)
	delete(r.conns, conn.id)
	conn.close()
}
