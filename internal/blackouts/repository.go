package blackouts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a blackout id does not exist.
var ErrNotFound = errors.New("blackouts: not found")

// Repository defines the store operations for staff unavailability records.
type Repository interface {
	Insert(ctx context.Context, req NewBlackoutRequest) (*Blackout, error)
	List(ctx context.Context) ([]*Blackout, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps blackouts in memory for tests and local runs.
type InMemoryRepository struct {
	mu        sync.RWMutex
	blackouts map[string]*Blackout
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{blackouts: make(map[string]*Blackout)}
}

// Insert stores a new blackout record.
func (r *InMemoryRepository) Insert(ctx context.Context, req NewBlackoutRequest) (*Blackout, error) {
	b := &Blackout{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Slot:      req.Slot,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.blackouts[b.ID] = b
	r.mu.Unlock()

	return b, nil
}

// List returns all blackouts ordered by date ascending.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Blackout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Blackout, 0, len(r.blackouts))
	for _, b := range r.blackouts {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes one blackout record.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blackouts[id]; !ok {
		return ErrNotFound
	}
	delete(r.blackouts, id)
	return nil
}
