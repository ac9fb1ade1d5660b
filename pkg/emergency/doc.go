// Package emergency coordinates mass broadcasts to tourists and
// authorities.
//
// A Broadcast moves through a strict lifecycle: draft, optionally
// scheduled, then sending once executed, ending as sent, cancelled or
// failed. Cancellation is only possible before sending starts.
//
// Execute resolves the audience against the recipient directory, localizes
// the message per recipient and fans out one notification per recipient
// and channel through the delivery dispatcher. An audience that resolves
// to nobody fails the broadcast outright. Stats recomputes delivery
// statistics from the owned notifications and settles a sending broadcast
// to sent once nothing is pending.
package emergency
