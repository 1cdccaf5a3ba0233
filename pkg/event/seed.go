package event

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config selects the catalog seed.
type Config struct {
	// SeedFile is a YAML document with an "events" list. Empty uses Mock.
	SeedFile string `env:"EVENTS_SEED_FILE"`
}

type seedDocument struct {
	Events []Event `yaml:"events"`
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Mock returns the built-in events.
func Mock() []Event {
	return []Event{
		{
			ID:               1,
			Title:            "Angular Conference 2024",
			Description:      "Join us for the biggest Angular conference of the year featuring talks from core team members and industry experts.",
			Date:             day("2024-07-15"),
			Time:             "09:00",
			Location:         "San Francisco Convention Center",
			Category:         "Technology",
			MaxAttendees:     500,
			CurrentAttendees: 342,
			ImageURL:         "https://images.unsplash.com/photo-1540575467063-178a50c2df87?w=400",
			CreatedBy:        "admin",
			CreatedAt:        day("2024-01-15"),
			Status:           StatusUpcoming,
		},
		{
			ID:               2,
			Title:            "Web Development Workshop",
			Description:      "Hands-on workshop covering modern web development techniques with React, Angular, and Vue.js.",
			Date:             day("2024-07-20"),
			Time:             "10:00",
			Location:         "Tech Hub Downtown",
			Category:         "Workshop",
			MaxAttendees:     50,
			CurrentAttendees: 45,
			ImageURL:         "https://images.unsplash.com/photo-1517180102446-f3ece451e9d8?w=400",
			CreatedBy:        "admin",
			CreatedAt:        day("2024-02-01"),
			Status:           StatusUpcoming,
		},
		{
			ID:               3,
			Title:            "Startup Networking Event",
			Description:      "Connect with fellow entrepreneurs, investors, and startup enthusiasts in this networking event.",
			Date:             day("2024-07-25"),
			Time:             "18:00",
			Location:         "Innovation Center",
			Category:         "Networking",
			MaxAttendees:     100,
			CurrentAttendees: 78,
			ImageURL:         "https://images.unsplash.com/photo-1515187029135-18ee286d815b?w=400",
			CreatedBy:        "admin",
			CreatedAt:        day("2024-02-10"),
			Status:           StatusUpcoming,
		},
		{
			ID:               4,
			Title:            "AI & Machine Learning Summit",
			Description:      "Explore the latest trends in artificial intelligence and machine learning with industry leaders.",
			Date:             day("2024-08-05"),
			Time:             "09:30",
			Location:         "Tech Park Auditorium",
			Category:         "Technology",
			MaxAttendees:     300,
			CurrentAttendees: 267,
			ImageURL:         "https://images.unsplash.com/photo-1485827404703-89b55fcc595e?w=400",
			CreatedBy:        "admin",
			CreatedAt:        day("2024-03-01"),
			Status:           StatusUpcoming,
		},
		{
			ID:               5,
			Title:            "Design Thinking Workshop",
			Description:      "Learn design thinking methodologies to solve complex problems and innovate effectively.",
			Date:             day("2024-08-10"),
			Time:             "14:00",
			Location:         "Creative Studio",
			Category:         "Design",
			MaxAttendees:     30,
			CurrentAttendees: 28,
			ImageURL:         "https://images.unsplash.com/photo-1552664730-d307ca884978?w=400",
			CreatedBy:        "admin",
			CreatedAt:        day("2024-03-15"),
			Status:           StatusUpcoming,
		},
		{
			ID:               6,
			Title:            "Digital Marketing Masterclass",
			Description:      "Master the art of digital marketing with proven strategies and real-world case studies.",
			Date:             day("2024-08-15"),
			Time:             "11:00",
			Location:         "Business Center",
			Category:         "Marketing",
			MaxAttendees:     80,
			CurrentAttendees: 65,
			ImageURL:         "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=400",
			CreatedBy:        "admin",
			CreatedAt:        day("2024-04-01"),
			Status:           StatusUpcoming,
		},
	}
}

// ParseSeed decodes a YAML seed document. Events need unique positive ids;
// a missing status defaults to upcoming.
func ParseSeed(data []byte) ([]Event, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidSeed, err)
	}

	seen := make(map[int]bool, len(doc.Events))
	for i := range doc.Events {
		e := &doc.Events[i]
		if e.ID <= 0 {
			return nil, fmt.Errorf("%w: event %d has no id", ErrInvalidSeed, i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: %w %d", ErrInvalidSeed, ErrDuplicateIdentifier, e.ID)
		}
		seen[e.ID] = true
		if e.Status == "" {
			e.Status = StatusUpcoming
		}
	}
	return doc.Events, nil
}

// LoadSeed returns the events selected by cfg.
func LoadSeed(cfg Config) ([]Event, error) {
	if cfg.SeedFile == "" {
		return Mock(), nil
	}
	data, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		return nil, errors.Join(ErrInvalidSeed, err)
	}
	return ParseSeed(data)
}
