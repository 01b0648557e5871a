package booking

import (
	"errors"
	"testing"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

func validIntake() SubmitRequest {
	return SubmitRequest{
		PatientName: "Jordan Reyes",
		Email:       "jordan@example.com",
		Phone:       "(555) 010-2030",
		Service:     "Routine Cleaning",
		Age:         34,
		PatientType: "new",
		Insurance:   "Delta Dental",
		Date:        "2025-06-02",
		Slot:        schedule.TimeSlot{Hour: 9},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	out := make(map[string]string, len(verr))
	for _, fe := range verr {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestValidateAcceptsCompleteIntake(t *testing.T) {
	req := validIntake()
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid intake, got %v", err)
	}
}

func TestValidateMissingRequiredFields(t *testing.T) {
	req := SubmitRequest{Slot: schedule.TimeSlot{Hour: 9}}
	fields := fieldsOf(t, req.Validate())

	for _, want := range []string{"patient_name", "email", "phone", "age", "service"} {
		if _, ok := fields[want]; !ok {
			t.Errorf("expected a field error for %s, got %v", want, fields)
		}
	}
}

func TestValidateEmailShape(t *testing.T) {
	req := validIntake()
	req.Email = "not-an-email"

	fields := fieldsOf(t, req.Validate())
	if _, ok := fields["email"]; !ok {
		t.Errorf("expected email error, got %v", fields)
	}
}

func TestValidatePhoneDigitCount(t *testing.T) {
	req := validIntake()
	req.Phone = "555-0102"

	fields := fieldsOf(t, req.Validate())
	if _, ok := fields["phone"]; !ok {
		t.Errorf("expected phone error, got %v", fields)
	}

	// Formatting characters are fine as long as ten digits are present.
	req.Phone = "+1 (555) 010-2030"
	if err := req.Validate(); err != nil {
		t.Errorf("expected formatted phone to pass, got %v", err)
	}
}

func TestValidateAgeBounds(t *testing.T) {
	for _, age := range []int{0, -3, 121} {
		req := validIntake()
		req.Age = age
		fields := fieldsOf(t, req.Validate())
		if _, ok := fields["age"]; !ok {
			t.Errorf("expected age error for %d, got %v", age, fields)
		}
	}
	for _, age := range []int{1, 120} {
		req := validIntake()
		req.Age = age
		if err := req.Validate(); err != nil {
			t.Errorf("expected age %d to pass, got %v", age, err)
		}
	}
}

func TestValidatePatientType(t *testing.T) {
	req := validIntake()
	req.PatientType = "walk-in"

	fields := fieldsOf(t, req.Validate())
	if _, ok := fields["patient_type"]; !ok {
		t.Errorf("expected patient_type error, got %v", fields)
	}
}

func TestValidateOffGridSlot(t *testing.T) {
	req := validIntake()
	req.Slot = schedule.TimeSlot{Hour: 9, Minute: 15}

	fields := fieldsOf(t, req.Validate())
	if _, ok := fields["time"]; !ok {
		t.Errorf("expected time error, got %v", fields)
	}
}
