// Package registry tracks live realtime connections and their room
// memberships.
//
// A Connection is created on handshake (after the auth collaborator verifies
// identity) and destroyed on disconnect. On registration the connection is
// joined to a fixed set of rooms derived from its role; further join/leave
// operations are idempotent. Rooms are derived state: they exist exactly as
// long as they have members and are rebuilt from live connections, never
// persisted.
//
// Each connection carries a bounded outbound buffer. Publishing through the
// registry never blocks; a full buffer drops the message, because durable
// delivery belongs to the channel workers, not the realtime path.
package registry
