// Package realtime implements best-effort fan-out of alert envelopes to live
// connections.
//
// Publishing is synchronous and fire-and-forget: every member of a resolved
// room gets a non-blocking send into its bounded buffer, and a full buffer or
// a mid-publish disconnect is a missed delivery, not an error. Durable,
// offline-reachable delivery is the channel workers' responsibility
// (see the delivery package).
package realtime
