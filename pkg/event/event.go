package event

import (
	"time"

	"github.com/dmitrymomot/eventhub/pkg/sanitizer"
	"github.com/dmitrymomot/eventhub/pkg/validator"
)

// Status is the lifecycle stage of an event.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Categories accepted by the event form. Design and Marketing are carried
// by the built-in events.
var Categories = []string{
	"Technology",
	"Business",
	"Workshop",
	"Conference",
	"Networking",
	"Training",
	"Seminar",
	"Design",
	"Marketing",
	"Other",
}

// DefaultImageURL is used when an event is created without an image.
const DefaultImageURL = "https://images.unsplash.com/photo-1540575467063-178a50c2df87?w=400"

const maxCapacity = 10000

// Event is a catalog entry.
type Event struct {
	ID               int       `json:"id" yaml:"id"`
	Title            string    `json:"title" yaml:"title"`
	Description      string    `json:"description" yaml:"description"`
	Date             time.Time `json:"date" yaml:"date"`
	Time             string    `json:"time" yaml:"time"`
	Location         string    `json:"location" yaml:"location"`
	Category         string    `json:"category" yaml:"category"`
	MaxAttendees     int       `json:"maxAttendees" yaml:"maxAttendees"`
	CurrentAttendees int       `json:"currentAttendees" yaml:"currentAttendees"`
	ImageURL         string    `json:"imageUrl,omitempty" yaml:"imageUrl"`
	CreatedBy        string    `json:"createdBy" yaml:"createdBy"`
	CreatedAt        time.Time `json:"createdAt" yaml:"createdAt"`
	Status           Status    `json:"status" yaml:"status"`
}

// Full reports whether every seat is taken.
func (e Event) Full() bool {
	return e.CurrentAttendees >= e.MaxAttendees
}

// CanRegister reports whether a seat can still be taken.
func (e Event) CanRegister() bool {
	return e.Status == StatusUpcoming && !e.Full()
}

// AttendancePercent is the share of seats taken, rounded to a whole percent.
func (e Event) AttendancePercent() int {
	if e.MaxAttendees <= 0 {
		return 0
	}
	return (e.CurrentAttendees*100 + e.MaxAttendees/2) / e.MaxAttendees
}

// Form is the user-editable part of an event.
type Form struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Location     string    `json:"location"`
	Category     string    `json:"category"`
	MaxAttendees int       `json:"maxAttendees"`
	ImageURL     string    `json:"imageUrl,omitempty"`
}

var (
	cleanLine = sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.SingleLine)
	cleanText = sanitizer.Compose(sanitizer.StripHTML, sanitizer.RemoveControlChars, sanitizer.Trim)
)

// Clean returns f with its text fields trimmed and stripped of markup.
func (f Form) Clean() Form {
	f.Title = cleanLine(f.Title)
	f.Description = cleanText(f.Description)
	f.Time = sanitizer.Trim(f.Time)
	f.Location = cleanLine(f.Location)
	f.Category = sanitizer.Trim(f.Category)
	f.ImageURL = sanitizer.Trim(f.ImageURL)
	return f
}

// Validate checks the form the way the event editor does.
func (f Form) Validate() error {
	return validator.Apply(
		validator.Required("title", f.Title),
		validator.MinLen("title", f.Title, 3),
		validator.Required("description", f.Description),
		validator.MinLen("description", f.Description, 10),
		validator.RequiredTime("date", f.Date),
		validator.ClockTime("time", f.Time),
		validator.Required("location", f.Location),
		validator.OneOf("category", f.Category, Categories),
		validator.Between("maxAttendees", f.MaxAttendees, 1, maxCapacity),
		validator.Optional(f.ImageURL, validator.ValidURL("imageUrl", f.ImageURL)),
	)
}

// apply copies the form onto e. An empty image keeps the current one.
func (f Form) apply(e Event) Event {
	e.Title = f.Title
	e.Description = f.Description
	e.Date = f.Date
	e.Time = f.Time
	e.Location = f.Location
	e.Category = f.Category
	e.MaxAttendees = f.MaxAttendees
	if f.ImageURL != "" {
		e.ImageURL = f.ImageURL
	}
	return e
}

// Stats summarises the catalog for the dashboard.
type Stats struct {
	TotalEvents    int `json:"totalEvents"`
	UpcomingEvents int `json:"upcomingEvents"`
	MyEvents       int `json:"myEvents"`
	TotalAttendees int `json:"totalAttendees"`
}
