package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	phoneRegex     = regexp.MustCompile(`^\+?[0-9()]{7,20}$`)
	clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func rule(field, message string, check func() bool) Rule {
	return Rule{Check: check, Error: ValidationError{Field: field, Message: message}}
}

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return rule(field, "field is required", func() bool {
		return strings.TrimSpace(value) != ""
	})
}

// MinLen counts characters, not bytes.
func MinLen(field, value string, min int) Rule {
	return rule(field, fmt.Sprintf("must be at least %d characters long", min), func() bool {
		return utf8.RuneCountInString(value) >= min
	})
}

// MaxLen fails when value is longer than max runes.
func MaxLen(field, value string, max int) Rule {
	return rule(field, fmt.Sprintf("must be at most %d characters long", max), func() bool {
		return utf8.RuneCountInString(value) <= max
	})
}

// Between validates min <= value <= max.
func Between[T Numeric](field string, value, min, max T) Rule {
	return rule(field, fmt.Sprintf("must be between %v and %v", min, max), func() bool {
		return value >= min && value <= max
	})
}

// OneOf fails when value is not one of options.
func OneOf(field, value string, options []string) Rule {
	return rule(field, fmt.Sprintf("must be one of: %s", strings.Join(options, ", ")), func() bool {
		return slices.Contains(options, value)
	})
}

// Equal validates that value matches other, e.g. a password confirmation.
func Equal(field, value, other, message string) Rule {
	return rule(field, message, func() bool {
		return value == other
	})
}

// RequiredTime validates that t is not the zero time.
func RequiredTime(field string, t time.Time) Rule {
	return rule(field, "field is required", func() bool {
		return !t.IsZero()
	})
}

// ClockTime validates a 24-hour "HH:MM" value.
func ClockTime(field, value string) Rule {
	return rule(field, "must be a time in HH:MM format", func() bool {
		return clockTimeRegex.MatchString(value)
	})
}

// ValidEmail fails when value is not a plausible email address.
func ValidEmail(field, value string) Rule {
	return rule(field, "must be a valid email address", func() bool {
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return false
		}
		local, domain, ok := strings.Cut(value, "@")
		if !ok || local == "" {
			return false
		}
		if !strings.Contains(domain, ".") {
			return false
		}
		for part := range strings.SplitSeq(domain, ".") {
			if part == "" {
				return false
			}
		}
		return true
	})
}

// ValidURL requires an absolute http or https URL.
func ValidURL(field, value string) Rule {
	return rule(field, "must be a valid URL", func() bool {
		u, err := url.ParseRequestURI(value)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})
}

// ValidPhone accepts international numbers with optional spaces and dashes.
func ValidPhone(field, value string) Rule {
	return rule(field, "must be a valid phone number", func() bool {
		cleaned := strings.NewReplacer(" ", "", "-", "").Replace(value)
		return phoneRegex.MatchString(cleaned)
	})
}

// Optional skips r when value is empty.
func Optional(value string, r Rule) Rule {
	check := r.Check
	r.Check = func() bool {
		return strings.TrimSpace(value) == "" || check()
	}
	return r
}
