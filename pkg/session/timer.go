package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/statemachine"
)

// Timer states.
const (
	TimerIdle  statemachine.StringState = "idle"
	TimerArmed statemachine.StringState = "armed"
	TimerFired statemachine.StringState = "fired"
)

const (
	timerArm    statemachine.StringEvent = "arm"
	timerCancel statemachine.StringEvent = "cancel"
	timerElapse statemachine.StringEvent = "elapse"
	timerSettle statemachine.StringEvent = "settle"
)

// Timer is a cancellable single-shot countdown. Only the most recent Arm can
// fire: arming again or cancelling discards the previous countdown, even if
// its underlying timer has already started running.
type Timer struct {
	mu         sync.Mutex
	clock      clock.Clock
	sm         *statemachine.Machine
	pending    clock.Timer
	generation uint64
	deadline   time.Time
	onExpire   func(deadline time.Time)
	log        *slog.Logger
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithTimerClock sets the clock that schedules the countdown.
func WithTimerClock(c clock.Clock) TimerOption {
	return func(t *Timer) { t.clock = c }
}

// WithTimerLogger sets the timer logger.
func WithTimerLogger(l *slog.Logger) TimerOption {
	return func(t *Timer) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTimer returns an idle Timer that calls onExpire with the deadline of
// the countdown that elapsed.
func NewTimer(onExpire func(deadline time.Time), opts ...TimerOption) *Timer {
	t := &Timer{
		clock:    clock.Real(),
		onExpire: onExpire,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.sm = statemachine.MustNew(TimerIdle,
		statemachine.WithTransition(TimerIdle, TimerArmed, timerArm),
		statemachine.WithTransition(TimerArmed, TimerArmed, timerArm),
		statemachine.WithTransition(TimerFired, TimerArmed, timerArm),
		statemachine.WithTransition(TimerArmed, TimerIdle, timerCancel),
		statemachine.WithTransition(TimerFired, TimerIdle, timerCancel),
		statemachine.WithTransition(TimerArmed, TimerFired, timerElapse),
		statemachine.WithTransition(TimerFired, TimerIdle, timerSettle),
		statemachine.WithObserver(func(from, to statemachine.State, event statemachine.Event) {
			t.log.Debug("session timer transition",
				slog.String("from", from.Name()),
				slog.String("to", to.Name()),
				logger.Event(event.Name()),
			)
		}),
	)
	return t
}

// Arm schedules the countdown to elapse d from now, replacing any armed one.
func (t *Timer) Arm(d time.Duration) {
	t.ArmAt(t.clock.Now().Add(d))
}

// ArmAt schedules the countdown to elapse at deadline, replacing any armed one.
// A deadline in the past elapses as soon as the clock allows.
func (t *Timer) ArmAt(deadline time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.generation++
	gen := t.generation
	t.deadline = deadline
	t.pending = t.clock.AfterFunc(deadline.Sub(t.clock.Now()), func() { t.elapse(gen) })
	t.fire(timerArm)
}

// Cancel discards the armed countdown. It is a no-op when idle.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sm.Is(TimerIdle) {
		return
	}
	t.stopLocked()
	t.generation++
	t.deadline = time.Time{}
	t.fire(timerCancel)
}

// State returns the current timer state.
func (t *Timer) State() statemachine.State {
	return t.sm.Current()
}

// Deadline returns the armed deadline and whether the timer is armed.
func (t *Timer) Deadline() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.sm.Is(TimerArmed) {
		return time.Time{}, false
	}
	return t.deadline, true
}

func (t *Timer) elapse(gen uint64) {
	t.mu.Lock()
	if gen != t.generation || !t.sm.Is(TimerArmed) {
		t.mu.Unlock()
		t.log.Debug("superseded session timer firing dropped")
		return
	}
	deadline := t.deadline
	t.pending = nil
	t.fire(timerElapse)
	t.mu.Unlock()

	if t.onExpire != nil {
		t.onExpire(deadline)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen == t.generation && t.sm.Is(TimerFired) {
		t.deadline = time.Time{}
		t.fire(timerSettle)
	}
}

func (t *Timer) stopLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Timer) fire(event statemachine.Event) {
	if err := t.sm.Fire(context.Background(), event, nil); err != nil {
		// transition table covers every reachable state
		t.log.Error("session timer transition failed", logger.Error(err))
	}
}
