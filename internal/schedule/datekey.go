package schedule

import (
	"fmt"
	"time"
)

// dateKeyLayout is the single canonical date format used for bucketing
// appointments and blackouts. Locale-aware formatting belongs to clients;
// nothing server-side may bucket on any other format.
const dateKeyLayout = "2006-01-02"

// DateKey returns the canonical YYYY-MM-DD key for a calendar date.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey parses a canonical date key into a midnight time in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule: parse date key %q: %w", key, err)
	}
	return t, nil
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WithinBookingWindow reports whether date falls inside [today, today+days],
// comparing clinic-local calendar days, not instants.
func WithinBookingWindow(date, now time.Time, days int) bool {
	today := startOfDay(now)
	day := startOfDay(date)
	return !day.Before(today) && !day.After(today.AddDate(0, 0, days))
}
