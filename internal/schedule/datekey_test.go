package schedule

import (
	"testing"
	"time"
)

func TestDateKeyIsLocaleIndependent(t *testing.T) {
	date := time.Date(2025, 6, 1, 15, 42, 0, 0, time.UTC)

	if got := DateKey(date); got != "2025-06-01" {
		t.Errorf("expected 2025-06-01, got %s", got)
	}
}

func TestParseDateKeyRoundTrip(t *testing.T) {
	parsed, err := ParseDateKey("2025-06-01", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateKey returned error: %v", err)
	}
	if got := DateKey(parsed); got != "2025-06-01" {
		t.Errorf("round trip changed key: %s", got)
	}
	if parsed.Hour() != 0 || parsed.Minute() != 0 {
		t.Errorf("expected midnight, got %s", parsed)
	}
}

func TestParseDateKeyRejectsOtherFormats(t *testing.T) {
	for _, raw := range []string{"01/06/2025", "June 1, 2025", "2025-6-1", ""} {
		if _, err := ParseDateKey(raw, time.UTC); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestWithinBookingWindow(t *testing.T) {
	now := time.Date(2025, 6, 10, 17, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		date time.Time
		want bool
	}{
		{"today late in the day", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), false},
		{"last day of window", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), true},
		{"one past the window", time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithinBookingWindow(tc.date, now, 30); got != tc.want {
				t.Errorf("WithinBookingWindow(%s) = %v, want %v", tc.date.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}
