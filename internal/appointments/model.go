package appointments

import (
	"strings"
	"time"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending Status = "Pending"
	StatusDone    Status = "Done"
	StatusNoShow  Status = "Didn't show up"
)

// Valid reports whether s is one of the three enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusNoShow:
		return true
	}
	return false
}

// Appointment is one patient booking as stored in the appointments table.
type Appointment struct {
	ID          string            `json:"id"`
	PatientName string            `json:"patient_name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Service     string            `json:"service"`
	Age         int               `json:"age"`
	PatientType string            `json:"patient_type"`
	Notes       string            `json:"notes"`
	Insurance   string            `json:"insurance"`
	Date        string            `json:"date"`
	Slot        schedule.TimeSlot `json:"time"`
	Status      Status            `json:"status"`
	BookedAt    time.Time         `json:"booked_at"`
}

// NewAppointmentRequest carries the fields the booking flow persists.
type NewAppointmentRequest struct {
	PatientName string
	Email       string
	Phone       string
	Service     string
	Age         int
	PatientType string
	Notes       string
	Insurance   string
	Date        string
	Slot        schedule.TimeSlot
}

// normalized returns the request with surrounding whitespace stripped and a
// fallback service label, matching what the booking form produced.
func (r NewAppointmentRequest) normalized() NewAppointmentRequest {
	r.PatientName = strings.TrimSpace(r.PatientName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Service = strings.TrimSpace(r.Service)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Insurance = strings.TrimSpace(r.Insurance)
	if r.Service == "" {
		r.Service = "General Consultation"
	}
	if r.PatientType == "" {
		r.PatientType = "new"
	}
	return r
}
