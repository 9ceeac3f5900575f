package service

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"task_manager/internal/domain"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minNameLen = 2
	maxNameLen = 24
)

// field pairs a request field name with whether it was supplied.
type field struct {
	name    string
	present bool
}

// requireFields fails with the list of absent fields in declaration order.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return domain.MissingFields(missing...)
	}
	return nil
}

func has(s string) bool { return strings.TrimSpace(s) != "" }

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minNameLen || n > maxNameLen {
		return domain.Validation("Name must be between 2 and 24 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return domain.Validation("Invalid email format")
	}
	return nil
}

var endTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseEndTime normalizes a client timestamp to UTC. Values without a zone are read as UTC.
func parseEndTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range endTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.Validation("endTime must be a valid date")
}
