package booking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSlotTaken is returned when the requested (date, time) is no longer
// available, either against the local snapshot or via a store conflict.
// Surfaced to the patient as "please pick another time".
var ErrSlotTaken = errors.New("booking: slot no longer available")

// ErrStoreWrite is returned when the insert itself failed. Surfaced as a
// retryable error; the service never retries on its own.
var ErrStoreWrite = errors.New("booking: store write failed")

// FieldError pins a validation failure to one intake field so the form can
// highlight it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level intake failures. It is returned
// before any store interaction.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "booking: invalid intake: " + strings.Join(parts, "; ")
}
