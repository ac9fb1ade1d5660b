// Package statemachine provides a small finite state machine with guarded
// transitions, used for lifecycles that must never skip or regress, such as
// an emergency broadcast moving from draft to sent.
//
//	m := statemachine.MustNew("draft",
//		statemachine.Transition{From: "draft", To: "scheduled", Event: "schedule"},
//		statemachine.Transition{From: "scheduled", To: "sending", Event: "execute"},
//	)
//	err := m.Fire(ctx, "schedule", nil)
package statemachine
