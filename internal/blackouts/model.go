package blackouts

import (
	"time"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

// Blackout marks a date or a single slot as closed for booking. A nil Slot
// blocks the whole day; the availability feed expands it against the
// weekday's generated slots.
type Blackout struct {
	ID        string             `json:"id"`
	Date      string             `json:"date"`
	Slot      *schedule.TimeSlot `json:"time,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// FullDay reports whether the record blocks the whole day.
func (b *Blackout) FullDay() bool {
	return b.Slot == nil
}

// NewBlackoutRequest carries the fields staff submit when closing time off.
type NewBlackoutRequest struct {
	Date   string
	Slot   *schedule.TimeSlot
	Reason string
}
