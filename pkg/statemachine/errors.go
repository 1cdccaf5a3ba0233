package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition: from, to, or event cannot be nil")
	ErrInvalidEvent      = errors.New("invalid event: event cannot be nil")
	ErrNilInitialState   = errors.New("initial state cannot be nil")
)

// NoTransitionError indicates no transition exists for the given state/event combination.
type NoTransitionError struct {
	StateName string
	EventName string
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition available from state '%s' for event '%s'", e.StateName, e.EventName)
}

// TransitionRejectedError indicates all candidate transitions were blocked by guards.
type TransitionRejectedError struct {
	StateName string
	EventName string
}

func (e *TransitionRejectedError) Error() string {
	return fmt.Sprintf("transition from state '%s' for event '%s' was rejected by guards", e.StateName, e.EventName)
}

// IsNoTransition reports whether err is, or wraps, a NoTransitionError.
func IsNoTransition(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}

// IsTransitionRejected reports whether err is, or wraps, a TransitionRejectedError.
func IsTransitionRejected(err error) bool {
	var e *TransitionRejectedError
	return errors.As(err, &e)
}
