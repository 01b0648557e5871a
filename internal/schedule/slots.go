package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeSlot is a half-hour-aligned time of day eligible for booking.
type TimeSlot struct {
	Hour   int
	Minute int
}

// opening hours by weekday; every slot is 30 minutes and the last one starts
// 30 minutes before close.
const (
	weekdayOpenHour = 9
	sundayOpenHour  = 13
	closeHour       = 19
	slotStepMinutes = 30
)

// ParseSlot parses a clock string such as "9:00" or "13:30" into a TimeSlot.
func ParseSlot(v string) (TimeSlot, error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("schedule: malformed slot %q", v)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("schedule: malformed slot hour %q", v)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("schedule: malformed slot minute %q", v)
	}
	slot := TimeSlot{Hour: hour, Minute: minute}
	if !slot.Valid() {
		return TimeSlot{}, fmt.Errorf("schedule: slot %q outside half-hour grid", v)
	}
	return slot, nil
}

// Valid reports whether the slot sits on the half-hour grid of a 24h day.
func (s TimeSlot) Valid() bool {
	return s.Hour >= 0 && s.Hour <= 23 && (s.Minute == 0 || s.Minute == 30)
}

// String renders the canonical wire form, e.g. "9:00" or "13:30".
func (s TimeSlot) String() string {
	return fmt.Sprintf("%d:%02d", s.Hour, s.Minute)
}

// Before orders slots by (hour, minute).
func (s TimeSlot) Before(other TimeSlot) bool {
	if s.Hour != other.Hour {
		return s.Hour < other.Hour
	}
	return s.Minute < other.Minute
}

// At pins the slot onto a calendar date in the given location.
func (s TimeSlot) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), s.Hour, s.Minute, 0, 0, loc)
}

// SlotsFor returns every bookable slot for the date's weekday, ascending.
// Sundays open at 13:00, every other day at 09:00; the clinic closes at
// 19:00 all week. The result depends on the weekday only.
func SlotsFor(date time.Time) []TimeSlot {
	open := weekdayOpenHour
	if date.Weekday() == time.Sunday {
		open = sundayOpenHour
	}
	slots := make([]TimeSlot, 0, (closeHour-open)*60/slotStepMinutes)
	for hour := open; hour < closeHour; hour++ {
		slots = append(slots, TimeSlot{Hour: hour}, TimeSlot{Hour: hour, Minute: 30})
	}
	return slots
}

// InDaySchedule reports whether the slot is one the date's weekday actually
// generates, i.e. between opening and the last half-hour before close.
func InDaySchedule(date time.Time, slot TimeSlot) bool {
	if !slot.Valid() {
		return false
	}
	open := weekdayOpenHour
	if date.Weekday() == time.Sunday {
		open = sundayOpenHour
	}
	return slot.Hour >= open && slot.Hour < closeHour
}

// SortSlots orders a slot list ascending in place.
func SortSlots(slots []TimeSlot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
}

// MarshalJSON renders the slot in its canonical wire form.
func (s TimeSlot) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON accepts the canonical wire form.
func (s *TimeSlot) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("schedule: slot must be a string: %w", err)
	}
	slot, err := ParseSlot(raw)
	if err != nil {
		return err
	}
	*s = slot
	return nil
}
