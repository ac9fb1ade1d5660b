// Package alert defines the domain vocabulary shared by the distribution
// pipeline: alert types and severities, connection-holder roles, the inbound
// events consumed from external collaborators, and the typed envelope carried
// on the realtime surface.
//
// The package is intentionally free of behaviour beyond pure classification
// helpers so that every other package can import it without cycles.
package alert
