package registry

import (
	"sync"
	"time"

	"github.com/roamsafe/alertkit/pkg/alert"
)

// Connection represents one live realtime session. It is created by
// Registry.Register and destroyed by Registry.Deregister; room membership is
// mutated only through the registry's join/leave operations.
type Connection struct {
	id          string
	userID      string
	role        alert.Role
	connectedAt time.Time

	mu           sync.RWMutex
	lastActivity time.Time
	messages     chan alert.Envelope
	closed       bool
}

func newConnection(id, userID string, role alert.Role, bufferSize int) *Connection {
	now := time.Now()
	return &Connection{
		id:           id,
		userID:       userID,
		role:         role,
		connectedAt:  now,
		lastActivity: now,
		// Minimum buffer of 1 keeps sends non-blocking even with a
		// misconfigured zero buffer.
		messages: make(chan alert.Envelope, max(bufferSize, 1)),
	}
}

// ID returns the unique connection identifier.
func (c *Connection) ID() string { return c.id }

// UserID returns the verified identity holding the connection.
func (c *Connection) UserID() string { return c.userID }

// Role returns the connection holder's role.
func (c *Connection) Role() alert.Role { return c.role }

// ConnectedAt returns when the connection completed its handshake.
func (c *Connection) ConnectedAt() time.Time { return c.connectedAt }

// LastActivity returns the time of the most recent activity on the connection.
func (c *Connection) LastActivity() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActivity
}

// Receive returns the channel carrying published envelopes for this
// connection. The channel is closed when the connection is deregistered.
func (c *Connection) Receive() <-chan alert.Envelope {
	return c.messages
}

// TrySend delivers an envelope without blocking. A full buffer drops the
// message and returns false: durable delivery is the channel workers' job,
// not this path's.
func (c *Connection) TrySend(env alert.Envelope) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.messages <- env:
		return true
	default:
		return false
	}
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.messages)
	}
}
