// Package notification models individual channel deliveries and tracks
// their lifecycle from creation to a terminal state.
//
// A Notification is one message to one recipient over one channel. Its
// status moves strictly forward: pending to sent, sent to delivered,
// delivered to read, with failed reachable from pending or sent. The only
// sanctioned regression is an operator retry, which resets a failed
// notification back to pending while the attempt budget allows it.
//
// Storage is an interface with two implementations: MemoryStorage for
// tests and single-process deployments, and RedisStorage for shared
// deployments. ClaimDue hands due pending notifications to exactly one
// caller at a time using a time-bounded lock.
//
// Tracker is the single writer of status transitions. All delivery
// workers, webhook callbacks, and operator actions report through it:
//
//	tracker := notification.NewTracker(store)
//	err := tracker.RecordOutcome(ctx, id, notification.StatusDelivered, nil)
//
// Concurrent reports for the same notification serialize on a striped
// lock, so a late failure callback cannot overwrite a delivered status.
package notification
