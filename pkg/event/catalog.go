package event

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/eventhub/pkg/broadcast"
	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/logger"
)

// Catalog is the in-memory event list. All methods are safe for concurrent use.
type Catalog struct {
	mu     sync.Mutex
	events *broadcast.Subject[[]Event]
	clock  clock.Clock
	log    *slog.Logger
}

// Option configures a Catalog.
type Option func(*catalogOptions)

type catalogOptions struct {
	events []Event
	clock  clock.Clock
	log    *slog.Logger
}

// WithEvents replaces the built-in mock events.
func WithEvents(events []Event) Option {
	return func(o *catalogOptions) { o.events = events }
}

// WithClock sets the clock used for createdAt stamps.
func WithClock(c clock.Clock) Option {
	return func(o *catalogOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the catalog logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *catalogOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewCatalog returns a catalog holding the mock events unless WithEvents is given.
func NewCatalog(opts ...Option) *Catalog {
	o := catalogOptions{clock: clock.Real(), log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.events == nil {
		o.events = Mock()
	}
	return &Catalog{
		events: broadcast.NewSubject(slices.Clone(o.events)),
		clock:  o.clock,
		log:    o.log.With(logger.Component("event")),
	}
}

// List returns every event in catalog order.
func (c *Catalog) List() []Event {
	return slices.Clone(c.events.Value())
}

// Get returns the event with id, or ErrNotFound.
func (c *Catalog) Get(id int) (Event, error) {
	events := c.events.Value()
	if i := indexOf(events, id); i >= 0 {
		return events[i], nil
	}
	return Event{}, ErrNotFound
}

// Create cleans and validates f and appends a new upcoming event with no attendees.
// The id is one more than the highest id in the catalog.
func (c *Catalog) Create(ctx context.Context, f Form, createdBy string) (Event, error) {
	f = f.Clean()
	if err := f.Validate(); err != nil {
		return Event{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	events := c.events.Value()
	e := f.apply(Event{
		ID:        nextID(events),
		ImageURL:  DefaultImageURL,
		CreatedBy: createdBy,
		CreatedAt: c.clock.Now(),
		Status:    StatusUpcoming,
	})
	c.events.Next(append(slices.Clone(events), e))

	c.log.InfoContext(ctx, "event created", slog.Int("event_id", e.ID), logger.Username(createdBy))
	return e, nil
}

// Edit cleans and validates f and applies it to the event with id. Attendance, author,
// creation time and status are kept.
func (c *Catalog) Edit(ctx context.Context, id int, f Form) (Event, error) {
	f = f.Clean()
	if err := f.Validate(); err != nil {
		return Event{}, err
	}
	return c.modify(ctx, id, func(e Event) (Event, error) {
		return f.apply(e), nil
	})
}

// Update replaces the stored event sharing e's id.
func (c *Catalog) Update(ctx context.Context, e Event) (Event, error) {
	return c.modify(ctx, e.ID, func(Event) (Event, error) {
		return e, nil
	})
}

// Register takes one seat of an upcoming event.
func (c *Catalog) Register(ctx context.Context, id int) (Event, error) {
	return c.modify(ctx, id, func(e Event) (Event, error) {
		if e.Status != StatusUpcoming {
			return e, ErrRegistrationClosed
		}
		if e.Full() {
			return e, ErrEventFull
		}
		e.CurrentAttendees++
		return e, nil
	})
}

// Delete removes the event with id, or returns ErrNotFound.
func (c *Catalog) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := c.events.Value()
	i := indexOf(events, id)
	if i < 0 {
		return ErrNotFound
	}
	c.events.Next(slices.Delete(slices.Clone(events), i, i+1))

	c.log.InfoContext(ctx, "event deleted", slog.Int("event_id", id))
	return nil
}

// Stats counts events, events dated after now, events created by username
// and taken seats.
func (c *Catalog) Stats(username string, now time.Time) Stats {
	var s Stats
	for _, e := range c.events.Value() {
		s.TotalEvents++
		s.TotalAttendees += e.CurrentAttendees
		if e.Date.After(now) {
			s.UpcomingEvents++
		}
		if username != "" && e.CreatedBy == username {
			s.MyEvents++
		}
	}
	return s
}

// Recent returns up to n events, newest first.
func (c *Catalog) Recent(n int) []Event {
	events := c.List()
	slices.SortStableFunc(events, func(a, b Event) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return events[:min(max(n, 0), len(events))]
}

// Subscribe calls fn with the current list and after every change.
// fn must not modify the catalog.
func (c *Catalog) Subscribe(fn func([]Event)) (unsubscribe func()) {
	return c.events.Subscribe(func(events []Event) { fn(slices.Clone(events)) })
}

func (c *Catalog) modify(ctx context.Context, id int, fn func(Event) (Event, error)) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := c.events.Value()
	i := indexOf(events, id)
	if i < 0 {
		return Event{}, ErrNotFound
	}

	updated, err := fn(events[i])
	if err != nil {
		return events[i], err
	}
	updated.ID = id

	next := slices.Clone(events)
	next[i] = updated
	c.events.Next(next)

	c.log.DebugContext(ctx, "event updated", slog.Int("event_id", id))
	return updated, nil
}

func indexOf(events []Event, id int) int {
	return slices.IndexFunc(events, func(e Event) bool { return e.ID == id })
}

func nextID(events []Event) int {
	if len(events) == 0 {
		return 1
	}
	return slices.MaxFunc(events, func(a, b Event) int { return cmp.Compare(a.ID, b.ID) }).ID + 1
}
