package availability

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

// Handler serves the calendar's per-date slot view.
type Handler struct {
	engine     *Engine
	logger     *logging.Logger
	windowDays int
	now        func() time.Time
}

// NewHandler creates an availability handler.
func NewHandler(engine *Engine, logger *logging.Logger, windowDays int) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:     engine,
		logger:     logger,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// DayResponse is the availability view for one date.
type DayResponse struct {
	Date       string        `json:"date"`
	Bookable   bool          `json:"bookable"`
	Slots      []SlotVerdict `json:"slots,omitempty"`
	SnapshotAt time.Time     `json:"snapshot_at"`
}

// GetDay handles GET /availability/{date} requests. Dates outside the
// booking window are reported as not bookable without a slot list.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	date, err := schedule.ParseDateKey(chi.URLParam(r, "date"), snap.loc)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	now := h.now().In(snap.loc)
	resp := DayResponse{
		Date:       schedule.DateKey(date),
		SnapshotAt: snap.TakenAt(),
	}
	if schedule.WithinBookingWindow(date, now, h.windowDays) {
		resp.Bookable = true
		resp.Slots = snap.DaySlots(date, now)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
