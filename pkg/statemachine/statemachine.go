package statemachine

import (
	"context"
)

// State is anything with a stable name. Machines compare states by name.
type State interface {
	Name() string
}

// Event names the trigger of a transition.
type Event interface {
	Name() string
}

// Action runs while the machine lock is held, before the state changes.
// A non-nil error aborts the transition and leaves the state untouched.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard vetoes a candidate transition by returning false.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Observer runs after the lock is released, once per successful transition.
type Observer func(from, to State, event Event)

// Transition moves the machine From -> To when Event fires and every guard passes.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// StateMachine is the read/fire surface of Machine.
type StateMachine interface {
	Current() State
	Is(state State) bool
	Fire(ctx context.Context, event Event, data any) error
	CanFire(ctx context.Context, event Event, data any) bool
	Reset()
}

var _ StateMachine = (*Machine)(nil)

// StringState is a State backed by its own name.
type StringState string

// Name returns s.
func (s StringState) Name() string { return string(s) }

// StringEvent is an Event backed by its own name.
type StringEvent string

// Name returns e.
func (e StringEvent) Name() string { return string(e) }
