package appointments

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an appointment id does not exist.
var ErrNotFound = errors.New("appointments: not found")

// ErrSlotConflict is returned when a pending appointment already occupies the
// requested (date, time) pair.
var ErrSlotConflict = errors.New("appointments: slot already has a pending appointment")

// Repository defines the store operations the rest of the service relies on.
type Repository interface {
	Insert(ctx context.Context, req NewAppointmentRequest) (*Appointment, error)
	List(ctx context.Context) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
	DeleteByStatus(ctx context.Context, status Status) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// InMemoryRepository keeps appointments in memory. Used by tests and as a
// stand-in store for local development without Postgres.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment

	// EnforceSlotUnique mirrors the partial unique index the Postgres store
	// carries. Tests flip it off to reproduce the stale-cache double-booking
	// behavior of a store without the constraint.
	EnforceSlotUnique bool
}

// NewInMemoryRepository creates an empty in-memory repository with the slot
// uniqueness constraint enabled.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments:      make(map[string]*Appointment),
		EnforceSlotUnique: true,
	}
}

// Insert stores a new pending appointment.
func (r *InMemoryRepository) Insert(ctx context.Context, req NewAppointmentRequest) (*Appointment, error) {
	req = req.normalized()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.EnforceSlotUnique {
		for _, apt := range r.appointments {
			if apt.Status == StatusPending && apt.Date == req.Date && apt.Slot == req.Slot {
				return nil, ErrSlotConflict
			}
		}
	}

	apt := &Appointment{
		ID:          uuid.NewString(),
		PatientName: req.PatientName,
		Email:       req.Email,
		Phone:       req.Phone,
		Service:     req.Service,
		Age:         req.Age,
		PatientType: req.PatientType,
		Notes:       req.Notes,
		Insurance:   req.Insurance,
		Date:        req.Date,
		Slot:        req.Slot,
		Status:      StatusPending,
		BookedAt:    time.Now().UTC(),
	}
	r.appointments[apt.ID] = apt
	return apt, nil
}

// List returns all appointments ordered by booking time descending.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0, len(r.appointments))
	for _, apt := range r.appointments {
		cp := *apt
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return out, nil
}

// UpdateStatus transitions one appointment to the given status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	apt.Status = status
	return nil
}

// Delete removes one appointment.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

// DeleteByStatus removes every appointment in the given status.
func (r *InMemoryRepository) DeleteByStatus(ctx context.Context, status Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, apt := range r.appointments {
		if apt.Status == status {
			delete(r.appointments, id)
			n++
		}
	}
	return n, nil
}

// DeleteAll removes every appointment.
func (r *InMemoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.appointments))
	r.appointments = make(map[string]*Appointment)
	return n, nil
}
