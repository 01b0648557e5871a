package booking

import (
	"regexp"
	"strings"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// SubmitRequest is the patient intake plus the chosen (date, slot) pair.
type SubmitRequest struct {
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
}

// Validate applies the intake field checks. It returns nil or a
// ValidationError listing every offending field.
func (r *SubmitRequest) Validate() error {
	var errs ValidationError

	if strings.TrimSpace(r.PatientName) == "" {
		errs = append(errs, FieldError{Field: "patient_name", Message: "full name is required"})
	}

	email := strings.TrimSpace(r.Email)
	switch {
	case email == "":
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	case !emailPattern.MatchString(email):
		errs = append(errs, FieldError{Field: "email", Message: "enter a valid email address"})
	}

	if digits := countDigits(r.Phone); strings.TrimSpace(r.Phone) == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "phone number is required"})
	} else if digits < 10 {
		errs = append(errs, FieldError{Field: "phone", Message: "enter a valid phone number"})
	}

	if r.Age < 1 || r.Age > 120 {
		errs = append(errs, FieldError{Field: "age", Message: "enter a valid age (1-120)"})
	}

	if strings.TrimSpace(r.Service) == "" {
		errs = append(errs, FieldError{Field: "service", Message: "select your dental concern"})
	}

	switch r.PatientType {
	case "", "new", "returning":
	default:
		errs = append(errs, FieldError{Field: "patient_type", Message: "must be new or returning"})
	}

	if !r.Slot.Valid() {
		errs = append(errs, FieldError{Field: "time", Message: "time must sit on the half-hour grid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
