package broadcast_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventhub/pkg/broadcast"
)

func TestSubject_Value(t *testing.T) {
	s := broadcast.NewSubject("initial")
	assert.Equal(t, "initial", s.Value())

	s.Next("next")
	assert.Equal(t, "next", s.Value())
}

func TestSubject_Subscribe(t *testing.T) {
	t.Run("replays latest on subscribe", func(t *testing.T) {
		s := broadcast.NewSubject(1)
		s.Next(2)

		var got []int
		s.Subscribe(func(v int) { got = append(got, v) })
		assert.Equal(t, []int{2}, got)

		s.Next(3)
		assert.Equal(t, []int{2, 3}, got)
	})

	t.Run("notifies in subscription order", func(t *testing.T) {
		s := broadcast.NewSubject(0)
		var order []string
		s.Subscribe(func(v int) {
			if v > 0 {
				order = append(order, "first")
			}
		})
		s.Subscribe(func(v int) {
			if v > 0 {
				order = append(order, "second")
			}
		})
		s.Subscribe(func(v int) {
			if v > 0 {
				order = append(order, "third")
			}
		})

		s.Next(1)
		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		s := broadcast.NewSubject(0)
		calls := 0
		unsubscribe := s.Subscribe(func(int) { calls++ })
		require.Equal(t, 1, calls)
		require.Equal(t, 1, s.Len())

		unsubscribe()
		unsubscribe()
		assert.Equal(t, 0, s.Len())

		s.Next(1)
		assert.Equal(t, 1, calls)
	})

	t.Run("callback may unsubscribe a later subscriber", func(t *testing.T) {
		s := broadcast.NewSubject(0)
		var second func()
		secondCalls := 0

		s.Subscribe(func(v int) {
			if v == 1 && second != nil {
				second()
			}
		})
		second = s.Subscribe(func(int) { secondCalls++ })
		require.Equal(t, 1, secondCalls)

		s.Next(1)
		assert.Equal(t, 1, secondCalls)
	})
}

func TestSubject_ConcurrentNext(t *testing.T) {
	s := broadcast.NewSubject(0)

	var mu sync.Mutex
	var first, second []int
	s.Subscribe(func(v int) {
		mu.Lock()
		first = append(first, v)
		mu.Unlock()
	})
	s.Subscribe(func(v int) {
		mu.Lock()
		second = append(second, v)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Next(v)
		}(i)
	}
	wg.Wait()

	require.Len(t, first, 51)
	assert.Equal(t, first, second, "every subscriber observes the same order")
	assert.Equal(t, first[len(first)-1], s.Value())
}
