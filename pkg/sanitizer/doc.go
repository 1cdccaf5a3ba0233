// Package sanitizer normalises user input before it is validated or stored.
//
// Every helper is a plain func(string) string so they compose into
// pipelines:
//
//	title := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.SingleLine)
//	clean := title("  Go\tMeetup \n") // "Go Meetup"
//
// Secrets are never sanitised: passwords are compared byte for byte.
package sanitizer
