// Package dispatch is the HTTP surface of the alert distribution engine. It
// mounts four route groups on one chi router:
//
//   - /notifications: create single or bulk notifications, query them, retry
//     failed ones and take provider delivery callbacks plus client read
//     receipts.
//   - /broadcasts: the emergency broadcast lifecycle from creation through
//     execution, with per-broadcast delivery stats.
//   - /events: intake for alert and SOS events, published best-effort to the
//     realtime rooms.
//   - /stream: the SSE subscribe endpoint carrying typed envelopes to
//     verified connections.
//
// The module holds no state; it binds requests, delegates to the core
// packages and maps their sentinel errors onto HTTP statuses.
package dispatch
