package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brightsmile-dental/clinic-api/internal/appointments"
	"github.com/brightsmile-dental/clinic-api/internal/blackouts"
	"github.com/brightsmile-dental/clinic-api/internal/observability/metrics"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

var availabilityTracer = otel.Tracer("clinic.internal.availability")

// ErrFeedUnavailable wraps store read failures during a refresh. Callers keep
// serving the previous snapshot; the error is for logs and metrics, never for
// the render path.
var ErrFeedUnavailable = errors.New("availability: feed unavailable")

// Engine combines the booking and blackout feeds into a single availability
// snapshot, refreshed on a polling cadence.
type Engine struct {
	appointments appointments.Repository
	blackouts    blackouts.Repository
	logger       *logging.Logger
	metrics      *metrics.BookingMetrics
	interval     time.Duration
	loc          *time.Location
	now          func() time.Time

	mu   sync.RWMutex
	snap *Snapshot
}

// NewEngine constructs an engine serving an empty snapshot until the first
// refresh completes.
func NewEngine(apts appointments.Repository, blks blackouts.Repository, logger *logging.Logger, m *metrics.BookingMetrics, interval time.Duration, loc *time.Location) *Engine {
	if apts == nil || blks == nil {
		panic("availability: both repositories required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		appointments: apts,
		blackouts:    blks,
		logger:       logger,
		metrics:      m,
		interval:     interval,
		loc:          loc,
		now:          time.Now,
		snap:         emptySnapshot(loc),
	}
}

// Snapshot returns the current view. Never nil.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Refresh rebuilds the snapshot from both feeds. On a read error the previous
// snapshot stays in place and the error is reported as ErrFeedUnavailable.
func (e *Engine) Refresh(ctx context.Context) error {
	ctx, span := availabilityTracer.Start(ctx, "availability.refresh")
	defer span.End()

	apts, err := e.appointments.List(ctx)
	if err != nil {
		return e.degrade(span, "appointments", err)
	}
	blks, err := e.blackouts.List(ctx)
	if err != nil {
		return e.degrade(span, "blackouts", err)
	}

	now := e.now()
	snap := BuildSnapshot(apts, blks, now, e.loc)

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	span.SetAttributes(
		attribute.Int("clinic.booked_dates", len(snap.booked)),
		attribute.Int("clinic.blackout_dates", len(snap.blackedOut)),
	)
	e.metrics.ObserveRefresh("ok")
	e.metrics.SetSnapshotAge(0)
	return nil
}

func (e *Engine) degrade(span trace.Span, feed string, err error) error {
	e.metrics.ObserveRefresh("error")
	e.logger.Warn("availability refresh failed, serving previous snapshot",
		"feed", feed,
		"error", err,
	)
	wrapped := fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, feed, err)
	span.RecordError(wrapped)
	return wrapped
}

// Run refreshes on the polling interval until ctx is cancelled. The store
// never pushes invalidations; bounded staleness up to one interval is the
// accepted freshness model.
func (e *Engine) Run(ctx context.Context) {
	if err := e.Refresh(ctx); err != nil {
		e.logger.Warn("initial availability refresh failed", "error", err)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("availability engine stopped")
			return
		case <-ticker.C:
			if err := e.Refresh(ctx); err == nil {
				continue
			}
			e.metrics.SetSnapshotAge(e.now().Sub(e.Snapshot().TakenAt()).Seconds())
		}
	}
}
