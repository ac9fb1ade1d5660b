// Package targeting maps outbound alerts to the rooms that must receive
// them. Resolution is a pure function of the alert's type, severity and
// affected zones; it holds no state and has no side effects.
package targeting
