package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Machine is a thread-safe in-memory state machine.
// Transitions are indexed as [fromState][event][]Transition.
type Machine struct {
	initialState State
	currentState State
	transitions  map[string]map[string][]Transition
	observers    []Observer
	mu           sync.RWMutex
}

func newMachine(initialState State) *Machine {
	return &Machine{
		initialState: initialState,
		currentState: initialState,
		transitions:  make(map[string]map[string][]Transition),
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// Is reports whether the machine is currently in state.
func (m *Machine) Is(state State) bool {
	if state == nil {
		return false
	}
	return m.Current().Name() == state.Name()
}

func (m *Machine) addTransition(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}

	from, event := t.From.Name(), t.Event.Name()
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[string][]Transition)
	}
	m.transitions[from][event] = append(m.transitions[from][event], t)
	return nil
}

// Fire triggers event. The first registered transition whose guards pass is taken.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	from := m.currentState
	t, err := m.lookup(ctx, event, data)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	for _, action := range t.Actions {
		if err := action(ctx, from, t.To, event, data); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.currentState = t.To
	observers := m.observers
	m.mu.Unlock()

	for _, observe := range observers {
		observe(from, t.To, event)
	}
	return nil
}

// CanFire reports whether Fire would succeed, ignoring actions.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := m.lookup(ctx, event, data)
	return err == nil
}

// Reset returns the machine to its initial state without notifying observers.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = m.initialState
}

func (m *Machine) lookup(ctx context.Context, event Event, data any) (*Transition, error) {
	state, name := m.currentState.Name(), event.Name()

	candidates := m.transitions[state][name]
	if len(candidates) == 0 {
		return nil, &NoTransitionError{StateName: state, EventName: name}
	}

	for i, t := range candidates {
		if guardsPass(ctx, t, m.currentState, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &TransitionRejectedError{StateName: state, EventName: name}
}

func guardsPass(ctx context.Context, t Transition, from State, event Event, data any) bool {
	for _, guard := range t.Guards {
		if !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
