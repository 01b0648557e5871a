package staff

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

// Stats summarizes the booking book for the dashboard header.
type Stats struct {
	Total       int64            `json:"total"`
	Pending     int64            `json:"pending"`
	Done        int64            `json:"done"`
	NoShow      int64            `json:"no_show"`
	Today       int64            `json:"today"`
	Submissions map[string]int64 `json:"submissions,omitempty"`
	// RefreshSeconds tells the dashboard how often to poll this endpoint.
	RefreshSeconds int       `json:"refresh_seconds"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// statsDB defines the database interface needed by StatsRepository.
type statsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatsRepository queries appointment counts from the database.
type StatsRepository struct {
	db statsDB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	if pool == nil {
		panic("staff: pgx pool required for stats")
	}
	return &StatsRepository{db: pool}
}

// NewStatsRepositoryWithDB allows injecting a mock database for testing.
func NewStatsRepositoryWithDB(db statsDB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats retrieves aggregated appointment counts. today is the clinic-local
// calendar day used for the same-day count.
func (r *StatsRepository) GetStats(ctx context.Context, today string) (*Stats, error) {
	stats := &Stats{GeneratedAt: time.Now().UTC()}

	totalQuery := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'Pending'),
		COUNT(*) FILTER (WHERE status = 'Done'),
		COUNT(*) FILTER (WHERE status = 'Didn''t show up')
	FROM appointments`
	if err := r.db.QueryRow(ctx, totalQuery).Scan(&stats.Total, &stats.Pending, &stats.Done, &stats.NoShow); err != nil {
		return nil, fmt.Errorf("staff stats: count appointments: %w", err)
	}

	todayQuery := `SELECT COUNT(*) FROM appointments WHERE appointment_date = $1`
	if err := r.db.QueryRow(ctx, todayQuery, today).Scan(&stats.Today); err != nil {
		return nil, fmt.Errorf("staff stats: count today: %w", err)
	}

	return stats, nil
}

// StatsHandler provides the dashboard stats endpoint.
type StatsHandler struct {
	repo     *StatsRepository
	gatherer prometheus.Gatherer
	loc      *time.Location
	refresh  time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewStatsHandler creates a new stats HTTP handler. The gatherer is optional;
// without it the submission counters are omitted. refresh is the polling
// cadence advertised to the dashboard.
func NewStatsHandler(repo *StatsRepository, gatherer prometheus.Gatherer, loc *time.Location, refresh time.Duration, logger *logging.Logger) *StatsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{
		repo:     repo,
		gatherer: gatherer,
		loc:      loc,
		refresh:  refresh,
		logger:   logger,
		now:      time.Now,
	}
}

// GetStats returns aggregated appointment counts plus the process-lifetime
// booking submission counters.
// GET /staff/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	today := h.now().In(h.loc).Format("2006-01-02")

	stats, err := h.repo.GetStats(r.Context(), today)
	if err != nil {
		h.logger.Error("failed to get dashboard stats", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	stats.Submissions = h.submissionCounts()
	stats.RefreshSeconds = int(h.refresh.Seconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("failed to encode dashboard stats", "error", err)
	}
}

// submissionCounts reads the booking submission counter family out of the
// registry so the dashboard sees the same numbers Prometheus scrapes.
func (h *StatsHandler) submissionCounts() map[string]int64 {
	if h.gatherer == nil {
		return nil
	}
	families, err := h.gatherer.Gather()
	if err != nil {
		h.logger.Warn("metric gather failed", "error", err)
		return nil
	}

	counts := map[string]int64{}
	for _, family := range families {
		if family.GetName() != "clinic_booking_submissions_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			counts[submissionOutcome(m)] += int64(m.GetCounter().GetValue())
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

func submissionOutcome(m *dto.Metric) string {
	for _, label := range m.GetLabel() {
		if label.GetName() == "outcome" {
			return label.GetValue()
		}
	}
	return "unknown"
}
