package availability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightsmile-dental/clinic-api/internal/appointments"
	"github.com/brightsmile-dental/clinic-api/internal/blackouts"
	"github.com/brightsmile-dental/clinic-api/internal/schedule"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

type failingAppointments struct {
	appointments.Repository
	err error
}

func (f *failingAppointments) List(ctx context.Context) ([]*appointments.Appointment, error) {
	return nil, f.err
}

func newTestEngine(aptRepo appointments.Repository, blkRepo blackouts.Repository) *Engine {
	return NewEngine(aptRepo, blkRepo, logging.Default(), nil, time.Second, time.UTC)
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	aptRepo := appointments.NewInMemoryRepository()
	blkRepo := blackouts.NewInMemoryRepository()
	slot := schedule.TimeSlot{Hour: 13}
	pendingAt(t, aptRepo, "2025-06-01", slot)

	engine := newTestEngine(aptRepo, blkRepo)
	if engine.Snapshot().TakenAt() != (time.Time{}) {
		t.Fatal("expected zero snapshot time before first refresh")
	}

	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	snap := engine.Snapshot()
	if snap.IsAvailable(sunday, slot, yesterday) {
		t.Error("refreshed snapshot should see the pending appointment")
	}
}

func TestRefreshFailurePreservesPreviousSnapshot(t *testing.T) {
	aptRepo := appointments.NewInMemoryRepository()
	blkRepo := blackouts.NewInMemoryRepository()
	slot := schedule.TimeSlot{Hour: 13}
	pendingAt(t, aptRepo, "2025-06-01", slot)

	failing := &failingAppointments{Repository: aptRepo}
	engine := newTestEngine(failing, blkRepo)

	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("healthy refresh returned error: %v", err)
	}
	before := engine.Snapshot()

	failing.err = errors.New("store offline")
	err := engine.Refresh(context.Background())
	if !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("expected ErrFeedUnavailable, got %v", err)
	}
	if engine.Snapshot() != before {
		t.Error("failed refresh must keep serving the previous snapshot")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	engine := newTestEngine(appointments.NewInMemoryRepository(), blackouts.NewInMemoryRepository())
	engine.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func serveDay(t *testing.T, h *Handler, date string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/availability/{date}", h.GetDay)
	req := httptest.NewRequest(http.MethodGet, "/availability/"+date, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetDayInsideWindow(t *testing.T) {
	engine := newTestEngine(appointments.NewInMemoryRepository(), blackouts.NewInMemoryRepository())
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	handler := NewHandler(engine, logging.Default(), 30)
	handler.now = func() time.Time { return yesterday }

	w := serveDay(t, handler, "2025-06-01")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp DayResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Bookable {
		t.Error("expected date inside window to be bookable")
	}
	if len(resp.Slots) != 12 {
		t.Errorf("expected 12 Sunday verdicts, got %d", len(resp.Slots))
	}
}

func TestGetDayOutsideWindow(t *testing.T) {
	engine := newTestEngine(appointments.NewInMemoryRepository(), blackouts.NewInMemoryRepository())
	handler := NewHandler(engine, logging.Default(), 30)
	handler.now = func() time.Time { return yesterday }

	w := serveDay(t, handler, "2025-08-01")
	var resp DayResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Bookable {
		t.Error("expected date outside window to be rejected regardless of slot state")
	}
	if len(resp.Slots) != 0 {
		t.Errorf("expected no slots outside window, got %d", len(resp.Slots))
	}
}

func TestGetDayMalformedDate(t *testing.T) {
	engine := newTestEngine(appointments.NewInMemoryRepository(), blackouts.NewInMemoryRepository())
	handler := NewHandler(engine, logging.Default(), 30)

	w := serveDay(t, handler, "01-06-2025")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
