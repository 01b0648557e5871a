package availability

import (
	"time"

	"github.com/brightsmile-dental/clinic-api/internal/appointments"
	"github.com/brightsmile-dental/clinic-api/internal/blackouts"
	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

type slotSet map[schedule.TimeSlot]struct{}

func (s slotSet) has(slot schedule.TimeSlot) bool {
	_, ok := s[slot]
	return ok
}

// Snapshot is an immutable view of both feeds, bucketed by canonical date
// key. Readers treat it as stale-but-serviceable until the next poll tick.
type Snapshot struct {
	booked     map[string]slotSet
	blackedOut map[string]slotSet
	takenAt    time.Time
	loc        *time.Location
}

// BuildSnapshot derives the per-date slot indices from raw store records.
// Only Pending appointments hold a slot; Done and no-show records free it
// for rebooking. Full-day blackouts expand to the whole generated slot list
// for that date's weekday, and may coexist with per-slot rows for the same
// date.
func BuildSnapshot(apts []*appointments.Appointment, blks []*blackouts.Blackout, takenAt time.Time, loc *time.Location) *Snapshot {
	if loc == nil {
		loc = time.UTC
	}
	snap := &Snapshot{
		booked:     make(map[string]slotSet),
		blackedOut: make(map[string]slotSet),
		takenAt:    takenAt,
		loc:        loc,
	}

	for _, apt := range apts {
		if apt.Status != appointments.StatusPending {
			continue
		}
		addSlot(snap.booked, apt.Date, apt.Slot)
	}

	for _, b := range blks {
		if !b.FullDay() {
			addSlot(snap.blackedOut, b.Date, *b.Slot)
			continue
		}
		date, err := schedule.ParseDateKey(b.Date, loc)
		if err != nil {
			// A row with an uninterpretable date cannot block anything.
			continue
		}
		for _, slot := range schedule.SlotsFor(date) {
			addSlot(snap.blackedOut, b.Date, slot)
		}
	}

	return snap
}

func addSlot(index map[string]slotSet, key string, slot schedule.TimeSlot) {
	set, ok := index[key]
	if !ok {
		set = make(slotSet)
		index[key] = set
	}
	set[slot] = struct{}{}
}

// emptySnapshot is what the engine serves before its first refresh.
func emptySnapshot(loc *time.Location) *Snapshot {
	return BuildSnapshot(nil, nil, time.Time{}, loc)
}

// TakenAt reports when the snapshot was built; zero before the first refresh.
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// IsAvailable reports whether (date, slot) can still be booked as of now:
// the slot must exist on the date's generated grid, its instant must be
// strictly in the future, and it must be neither booked nor blacked out.
func (s *Snapshot) IsAvailable(date time.Time, slot schedule.TimeSlot, now time.Time) bool {
	if !schedule.InDaySchedule(date, slot) {
		return false
	}
	if !slot.At(date, s.loc).After(now) {
		return false
	}
	key := schedule.DateKey(date)
	if s.booked[key].has(slot) {
		return false
	}
	if s.blackedOut[key].has(slot) {
		return false
	}
	return true
}

// SlotVerdict is the per-slot availability view served to the calendar UI.
type SlotVerdict struct {
	Slot       schedule.TimeSlot `json:"time"`
	Available  bool              `json:"available"`
	Booked     bool              `json:"booked"`
	BlackedOut bool              `json:"blacked_out"`
}

// DaySlots renders the full verdict list for one date. A date whose weekday
// generates no slots yields an empty list, not an error.
func (s *Snapshot) DaySlots(date time.Time, now time.Time) []SlotVerdict {
	key := schedule.DateKey(date)
	slots := schedule.SlotsFor(date)
	out := make([]SlotVerdict, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SlotVerdict{
			Slot:       slot,
			Available:  s.IsAvailable(date, slot, now),
			Booked:     s.booked[key].has(slot),
			BlackedOut: s.blackedOut[key].has(slot),
		})
	}
	return out
}
