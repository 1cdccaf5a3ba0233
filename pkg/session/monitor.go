package session

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// SignalKind names a user interaction signal.
type SignalKind string

const (
	SignalMouseDown  SignalKind = "mousedown"
	SignalMouseMove  SignalKind = "mousemove"
	SignalKeyPress   SignalKind = "keypress"
	SignalScroll     SignalKind = "scroll"
	SignalTouchStart SignalKind = "touchstart"
	SignalClick      SignalKind = "click"
)

// SignalKinds returns every interaction signal the Monitor observes.
func SignalKinds() []SignalKind {
	return []SignalKind{
		SignalMouseDown,
		SignalMouseMove,
		SignalKeyPress,
		SignalScroll,
		SignalTouchStart,
		SignalClick,
	}
}

// Valid reports whether k is one of SignalKinds.
func (k SignalKind) Valid() bool {
	return slices.Contains(SignalKinds(), k)
}

// SignalSource delivers interaction signals of a kind to a listener.
// Listeners are passive: they cannot block or cancel the interaction.
type SignalSource interface {
	Listen(kind SignalKind, fn func()) (stop func())
}

// Monitor observes every SignalKind on a source and reports each one.
type Monitor struct {
	mu       sync.Mutex
	source   SignalSource
	onSignal func(ctx context.Context, kind SignalKind)
	stops    []func()
}

// NewMonitor returns a stopped Monitor.
func NewMonitor(source SignalSource, onSignal func(ctx context.Context, kind SignalKind)) *Monitor {
	return &Monitor{source: source, onSignal: onSignal}
}

// Start begins observing. ctx is passed to onSignal and must outlive the
// Monitor; calling Start on a running Monitor has no effect.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source == nil || len(m.stops) > 0 {
		return
	}
	for _, kind := range SignalKinds() {
		m.stops = append(m.stops, m.source.Listen(kind, func() { m.onSignal(ctx, kind) }))
	}
}

// Stop detaches every listener.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stops := m.stops
	m.stops = nil
	m.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// SignalBus is an in-process SignalSource. Emit dispatches synchronously.
type SignalBus struct {
	mu        sync.RWMutex
	listeners map[SignalKind][]signalListener
}

type signalListener struct {
	id string
	fn func()
}

// NewSignalBus returns a bus with no listeners.
func NewSignalBus() *SignalBus {
	return &SignalBus{listeners: make(map[SignalKind][]signalListener)}
}

// Listen calls fn for every emitted signal of kind until stop is called.
func (b *SignalBus) Listen(kind SignalKind, fn func()) (stop func()) {
	id := uuid.NewString()

	b.mu.Lock()
	b.listeners[kind] = append(b.listeners[kind], signalListener{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.listeners[kind] = slices.DeleteFunc(b.listeners[kind], func(l signalListener) bool { return l.id == id })
	}
}

// Emit delivers a signal of kind to its listeners and reports how many received it.
func (b *SignalBus) Emit(kind SignalKind) int {
	b.mu.RLock()
	listeners := slices.Clone(b.listeners[kind])
	b.mu.RUnlock()

	for _, l := range listeners {
		l.fn()
	}
	return len(listeners)
}
