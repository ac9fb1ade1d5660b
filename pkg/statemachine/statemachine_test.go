package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsafe/alertkit/pkg/statemachine"
)

const (
	stateDraft     statemachine.State = "draft"
	stateScheduled statemachine.State = "scheduled"
	stateSending   statemachine.State = "sending"

	eventSchedule statemachine.Event = "schedule"
	eventExecute  statemachine.Event = "execute"
)

func newTestMachine(t *testing.T, transitions ...statemachine.Transition) *statemachine.Machine {
	t.Helper()
	m, err := statemachine.New(stateDraft, transitions...)
	require.NoError(t, err)
	return m
}

func TestMachine_Fire(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t,
		statemachine.Transition{From: stateDraft, To: stateScheduled, Event: eventSchedule},
		statemachine.Transition{From: stateScheduled, To: stateSending, Event: eventExecute},
	)

	assert.Equal(t, stateDraft, m.Current())

	require.NoError(t, m.Fire(context.Background(), eventSchedule, nil))
	assert.Equal(t, stateScheduled, m.Current())

	t.Run("event with no edge from current state", func(t *testing.T) {
		err := m.Fire(context.Background(), eventSchedule, nil)
		assert.ErrorIs(t, err, statemachine.ErrTransitionNotFound)
		assert.Equal(t, stateScheduled, m.Current())
	})

	require.NoError(t, m.Fire(context.Background(), eventExecute, nil))
	assert.Equal(t, stateSending, m.Current())
}

func TestMachine_Guards(t *testing.T) {
	t.Parallel()

	allow := false
	m := newTestMachine(t, statemachine.Transition{
		From:  stateDraft,
		To:    stateScheduled,
		Event: eventSchedule,
		Guards: []statemachine.Guard{
			func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
				return allow
			},
		},
	})

	assert.False(t, m.CanFire(context.Background(), eventSchedule, nil))
	assert.ErrorIs(t, m.Fire(context.Background(), eventSchedule, nil), statemachine.ErrGuardRejected)
	assert.Equal(t, stateDraft, m.Current())

	allow = true
	assert.True(t, m.CanFire(context.Background(), eventSchedule, nil))
	assert.NoError(t, m.Fire(context.Background(), eventSchedule, nil))
}

func TestMachine_ActionErrorAbortsTransition(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m := newTestMachine(t, statemachine.Transition{
		From:  stateDraft,
		To:    stateScheduled,
		Event: eventSchedule,
		Actions: []statemachine.Action{
			func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
				return boom
			},
		},
	})

	assert.ErrorIs(t, m.Fire(context.Background(), eventSchedule, nil), boom)
	assert.Equal(t, stateDraft, m.Current())
}

func TestMachine_ActionReceivesData(t *testing.T) {
	t.Parallel()

	var got any
	m := newTestMachine(t, statemachine.Transition{
		From:  stateDraft,
		To:    stateScheduled,
		Event: eventSchedule,
		Actions: []statemachine.Action{
			func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
				got = data
				return nil
			},
		},
	})

	require.NoError(t, m.Fire(context.Background(), eventSchedule, "payload"))
	assert.Equal(t, "payload", got)
}

func TestNew_DuplicateTransition(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(stateDraft,
		statemachine.Transition{From: stateDraft, To: stateScheduled, Event: eventSchedule},
		statemachine.Transition{From: stateDraft, To: stateSending, Event: eventSchedule},
	)
	assert.ErrorIs(t, err, statemachine.ErrDuplicateTransition)
}

func TestMachine_Reset(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t,
		statemachine.Transition{From: stateDraft, To: stateScheduled, Event: eventSchedule},
	)
	require.NoError(t, m.Fire(context.Background(), eventSchedule, nil))
	m.Reset()
	assert.Equal(t, stateDraft, m.Current())
}
