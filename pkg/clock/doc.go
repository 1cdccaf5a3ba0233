// Package clock abstracts wall-clock time and single-shot timers so that
// time-driven components can be tested deterministically.
//
// Production code uses Real, which delegates to the time package:
//
//	c := clock.Real()
//	t := c.AfterFunc(30*time.Minute, onExpire)
//	defer t.Stop()
//
// Tests use Fake, which only moves when told to. Advance fires every timer
// whose deadline falls inside the advanced window, in deadline order, on the
// calling goroutine:
//
//	fake := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
//	fake.AfterFunc(time.Minute, func() { fired = true })
//	fake.Advance(time.Minute) // fired == true
package clock
