package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brightsmile-dental/clinic-api/internal/appointments"
	"github.com/brightsmile-dental/clinic-api/internal/availability"
	"github.com/brightsmile-dental/clinic-api/internal/observability/metrics"
	"github.com/brightsmile-dental/clinic-api/internal/schedule"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

var bookingTracer = otel.Tracer("clinic.internal.booking")

// Service validates and persists patient bookings.
type Service struct {
	repo       appointments.Repository
	engine     *availability.Engine
	logger     *logging.Logger
	metrics    *metrics.BookingMetrics
	windowDays int
	loc        *time.Location
	now        func() time.Time
}

// NewService constructs a booking service.
func NewService(repo appointments.Repository, engine *availability.Engine, logger *logging.Logger, m *metrics.BookingMetrics, windowDays int, loc *time.Location) *Service {
	if repo == nil {
		panic("booking: repository required")
	}
	if engine == nil {
		panic("booking: availability engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       repo,
		engine:     engine,
		logger:     logger,
		metrics:    m,
		windowDays: windowDays,
		loc:        loc,
		now:        time.Now,
	}
}

// Submit books (date, slot) for the patient. The availability precondition is
// checked against the freshest snapshot, which may lag the store by up to the
// polling interval; the pending-slot unique index is what actually closes the
// cross-session race. The snapshot is deliberately not invalidated after a
// successful insert — it stays stale until the next poll tick.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*appointments.Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()

	if err := req.Validate(); err != nil {
		s.metrics.ObserveSubmission("invalid")
		return nil, err
	}

	date, err := schedule.ParseDateKey(req.Date, s.loc)
	if err != nil {
		s.metrics.ObserveSubmission("invalid")
		return nil, ValidationError{{Field: "date", Message: "date must be YYYY-MM-DD"}}
	}
	span.SetAttributes(
		attribute.String("clinic.date", req.Date),
		attribute.String("clinic.slot", req.Slot.String()),
	)

	now := s.now().In(s.loc)
	if !schedule.WithinBookingWindow(date, now, s.windowDays) {
		s.metrics.ObserveSubmission("outside_window")
		return nil, ValidationError{{Field: "date", Message: fmt.Sprintf("date must be within the next %d days", s.windowDays)}}
	}

	if !s.engine.Snapshot().IsAvailable(date, req.Slot, now) {
		s.metrics.ObserveSubmission("slot_taken")
		return nil, ErrSlotTaken
	}

	apt, err := s.repo.Insert(ctx, appointments.NewAppointmentRequest{
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
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, appointments.ErrSlotConflict) {
			s.metrics.ObserveSubmission("slot_taken")
			return nil, ErrSlotTaken
		}
		s.metrics.ObserveSubmission("store_error")
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	s.metrics.ObserveSubmission("created")
	s.logger.Info("appointment booked",
		"id", apt.ID,
		"date", apt.Date,
		"time", apt.Slot.String(),
		"service", apt.Service,
	)
	return apt, nil
}
