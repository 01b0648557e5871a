package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsmile-dental/clinic-api/internal/appointments"
	"github.com/brightsmile-dental/clinic-api/internal/availability"
	"github.com/brightsmile-dental/clinic-api/internal/blackouts"
	"github.com/brightsmile-dental/clinic-api/internal/schedule"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

// Fixed clock: Saturday 2025-05-31 noon; 2025-06-01 is the next Sunday.
var testNow = time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *appointments.InMemoryRepository
	blkRepo *blackouts.InMemoryRepository
	engine  *availability.Engine
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := appointments.NewInMemoryRepository()
	blkRepo := blackouts.NewInMemoryRepository()
	engine := availability.NewEngine(repo, blkRepo, logging.Default(), nil, time.Second, time.UTC)
	require.NoError(t, engine.Refresh(context.Background()))

	service := NewService(repo, engine, logging.Default(), nil, 30, time.UTC)
	service.now = func() time.Time { return testNow }
	return &fixture{repo: repo, blkRepo: blkRepo, engine: engine, service: service}
}

func sundayRequest() SubmitRequest {
	req := validIntake()
	req.Date = "2025-06-01"
	req.Slot = schedule.TimeSlot{Hour: 13}
	return req
}

func TestSubmitBooksOpenSlot(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.Submit(context.Background(), sundayRequest())
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusPending, apt.Status)
	assert.Equal(t, "2025-06-01", apt.Date)
	assert.Equal(t, "13:00", apt.Slot.String())
}

func TestSubmitRejectsInvalidIntakeBeforeStore(t *testing.T) {
	f := newFixture(t)
	req := sundayRequest()
	req.Email = "nope"

	_, err := f.service.Submit(context.Background(), req)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)

	list, _ := f.repo.List(context.Background())
	assert.Empty(t, list, "validation failures must not touch the store")
}

func TestSubmitRejectsDateOutsideWindow(t *testing.T) {
	f := newFixture(t)

	for _, date := range []string{"2025-05-30", "2025-07-15"} {
		req := sundayRequest()
		req.Date = date
		_, err := f.service.Submit(context.Background(), req)
		var verr ValidationError
		require.ErrorAs(t, err, &verr, "date %s", date)
		assert.Equal(t, "date", verr[0].Field)
	}
}

func TestSubmitRejectsBlackedOutSlot(t *testing.T) {
	f := newFixture(t)
	_, err := f.blkRepo.Insert(context.Background(), blackouts.NewBlackoutRequest{Date: "2025-06-01"})
	require.NoError(t, err)
	require.NoError(t, f.engine.Refresh(context.Background()))

	_, err = f.service.Submit(context.Background(), sundayRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
}

// Two submissions against the same slot with no refresh in between: the first
// succeeds, the snapshot stays stale, and only the store's pending-slot
// uniqueness stops the second. This is the documented cross-session race.
func TestSubmitStaleCacheRaceClosedByStoreConstraint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, sundayRequest())
	require.NoError(t, err)

	// No engine refresh: the local precondition still believes the slot is open.
	_, err = f.service.Submit(ctx, sundayRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)

	list, _ := f.repo.List(ctx)
	assert.Len(t, list, 1)
}

// With the store constraint disabled the race is observable end to end: both
// submissions pass the stale precondition and both rows land.
func TestSubmitStaleCacheRaceWithoutStoreConstraint(t *testing.T) {
	f := newFixture(t)
	f.repo.EnforceSlotUnique = false
	ctx := context.Background()

	_, err := f.service.Submit(ctx, sundayRequest())
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, sundayRequest())
	require.NoError(t, err)

	list, _ := f.repo.List(ctx)
	assert.Len(t, list, 2, "both submissions land against a stale cache")
}

func TestSubmitAfterRefreshSeesOwnBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, sundayRequest())
	require.NoError(t, err)
	require.NoError(t, f.engine.Refresh(ctx))

	_, err = f.service.Submit(ctx, sundayRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
}

type failingRepo struct {
	appointments.Repository
}

func (f *failingRepo) Insert(ctx context.Context, req appointments.NewAppointmentRequest) (*appointments.Appointment, error) {
	return nil, errors.New("connection reset")
}

func TestSubmitSurfacesStoreWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.service.repo = &failingRepo{Repository: f.repo}

	_, err := f.service.Submit(context.Background(), sundayRequest())
	assert.ErrorIs(t, err, ErrStoreWrite)
}

func TestSubmitRejectsPastSlotSameDay(t *testing.T) {
	f := newFixture(t)

	// Saturday noon: the 9:00 slot that morning is already gone.
	req := validIntake()
	req.Date = "2025-05-31"
	req.Slot = schedule.TimeSlot{Hour: 9}

	_, err := f.service.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)
}
