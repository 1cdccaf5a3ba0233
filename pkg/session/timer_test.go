package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type firing struct {
	at       time.Time
	deadline time.Time
}

func newTestTimer(t *testing.T) (*session.Timer, *clock.Fake, *[]firing) {
	t.Helper()
	fake := clock.NewFake(t0)
	var fired []firing
	timer := session.NewTimer(func(deadline time.Time) {
		fired = append(fired, firing{at: fake.Now(), deadline: deadline})
	}, session.WithTimerClock(fake))
	return timer, fake, &fired
}

func TestTimer_OnlyLastArmFires(t *testing.T) {
	sequences := [][]time.Duration{
		{time.Minute},
		{time.Minute, 2 * time.Minute},
		{5 * time.Minute, time.Minute, 3 * time.Minute},
		{time.Second, time.Second, time.Second, time.Second},
		{30 * time.Minute, 10 * time.Second, 45 * time.Minute, time.Millisecond},
	}

	for _, seq := range sequences {
		timer, fake, fired := newTestTimer(t)

		var lastCall time.Time
		for i, d := range seq {
			fake.Advance(time.Duration(i) * time.Millisecond)
			lastCall = fake.Now()
			timer.Arm(d)
		}
		want := lastCall.Add(seq[len(seq)-1])

		fake.Advance(time.Hour)

		require.Len(t, *fired, 1, "sequence %v", seq)
		assert.Equal(t, want, (*fired)[0].at, "sequence %v", seq)
		assert.Equal(t, want, (*fired)[0].deadline, "sequence %v", seq)
		assert.Equal(t, session.TimerIdle, timer.State())
	}
}

func TestTimer_States(t *testing.T) {
	timer, fake, fired := newTestTimer(t)
	assert.Equal(t, session.TimerIdle, timer.State())
	_, armed := timer.Deadline()
	assert.False(t, armed)

	timer.Arm(time.Minute)
	assert.Equal(t, session.TimerArmed, timer.State())
	deadline, armed := timer.Deadline()
	require.True(t, armed)
	assert.Equal(t, t0.Add(time.Minute), deadline)

	timer.Cancel()
	assert.Equal(t, session.TimerIdle, timer.State())
	fake.Advance(time.Hour)
	assert.Empty(t, *fired)

	timer.Cancel()
	assert.Equal(t, session.TimerIdle, timer.State(), "cancel when idle is a no-op")
}

func TestTimer_ArmAt(t *testing.T) {
	timer, fake, fired := newTestTimer(t)

	timer.ArmAt(t0.Add(90 * time.Second))
	fake.Advance(89 * time.Second)
	assert.Empty(t, *fired)
	fake.Advance(time.Second)
	require.Len(t, *fired, 1)

	timer.ArmAt(fake.Now().Add(-time.Minute))
	fake.Advance(0)
	assert.Len(t, *fired, 2, "past deadline fires on next tick")
}

func TestTimer_FiresOnce(t *testing.T) {
	timer, fake, fired := newTestTimer(t)
	timer.Arm(time.Second)
	fake.Advance(time.Second)
	fake.Advance(time.Hour)
	assert.Len(t, *fired, 1)
	assert.Equal(t, session.TimerIdle, timer.State())
}

func TestTimer_RearmFromCallback(t *testing.T) {
	fake := clock.NewFake(t0)
	var timer *session.Timer
	count := 0
	timer = session.NewTimer(func(time.Time) {
		count++
		if count == 1 {
			timer.Arm(time.Minute)
		}
	}, session.WithTimerClock(fake))

	timer.Arm(time.Minute)
	fake.Advance(time.Minute)
	assert.Equal(t, session.TimerArmed, timer.State())

	fake.Advance(time.Minute)
	assert.Equal(t, 2, count)
	assert.Equal(t, session.TimerIdle, timer.State())
}

func TestTimer_RealClock(t *testing.T) {
	done := make(chan time.Time, 1)
	timer := session.NewTimer(func(deadline time.Time) { done <- deadline })

	timer.Arm(time.Hour)
	timer.Arm(5 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	select {
	case <-done:
		t.Fatal("superseded countdown fired")
	case <-time.After(20 * time.Millisecond):
	}
}
