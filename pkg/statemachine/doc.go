// Package statemachine implements a small, thread-safe finite state machine
// with a declarative transition table.
//
// Transitions are registered with functional options at construction time.
// Each transition may carry guards, which must all pass for it to be taken,
// and actions, which run before the state changes and abort it on error:
//
//	const (
//		Idle  statemachine.StringState = "idle"
//		Armed statemachine.StringState = "armed"
//		Arm   statemachine.StringEvent = "arm"
//	)
//
//	sm := statemachine.MustNew(Idle,
//		statemachine.WithTransition(Idle, Armed, Arm),
//		statemachine.WithTransition(Armed, Armed, Arm),
//	)
//
//	if err := sm.Fire(ctx, Arm, nil); err != nil {
//		// handle
//	}
//
// Several transitions may share a source state and event; the first whose
// guards pass wins, so registration order expresses priority.
//
// WithObserver registers a callback invoked after every successful
// transition, which is convenient for debug logging.
package statemachine
