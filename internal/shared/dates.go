package shared

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02.01.2006",
	"2.1.2006",
}

// ParseFlexibleDate accepts ISO dates and day.month.year textual forms
// (dots or slashes). Unparseable or empty input yields nil rather than an
// error; callers store the date as null in that case.
func ParseFlexibleDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	normalized := strings.ReplaceAll(s, "/", ".")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}
