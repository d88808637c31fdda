package services

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

var dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns midnight in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ParseDateTime accepts RFC 3339 or a local "YYYY-MM-DD HH:MM[:SS]" (T separator allowed)
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q", s)
}

// dateField parses an optional date input, recording a field error on failure
func dateField(verr *ValidationError, field string, v *string, loc *time.Location) *time.Time {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	t, err := ParseDate(*v, loc)
	if err != nil {
		verr.Add(field, "Enter a valid date (YYYY-MM-DD).")
		return nil
	}
	return &t
}

// dateTimeField is dateField for timestamps
func dateTimeField(verr *ValidationError, field string, v *string, loc *time.Location) *time.Time {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	t, err := ParseDateTime(*v, loc)
	if err != nil {
		verr.Add(field, "Enter a valid date/time.")
		return nil
	}
	return &t
}

// requireString trims a required text input, recording a field error when blank
func requireString(verr *ValidationError, field string, v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		verr.Add(field, "This field is required.")
		return ""
	}
	return strings.TrimSpace(*v)
}

func isBlank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}
