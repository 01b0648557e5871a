package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightsmile-dental/clinic-api/internal/availability"
	"github.com/brightsmile-dental/clinic-api/internal/booking"
	httpmiddleware "github.com/brightsmile-dental/clinic-api/internal/http/middleware"
	"github.com/brightsmile-dental/clinic-api/internal/staff"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AvailabilityHandler *availability.Handler
	BookingHandler      *booking.Handler
	StaffHandler        *staff.Handler
	StatsHandler        *staff.StatsHandler
	StaffGate           *staff.Gate
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (booking site, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.AvailabilityHandler != nil {
			public.Get("/availability/{date}", cfg.AvailabilityHandler.GetDay)
		}
		if cfg.BookingHandler != nil {
			public.Post("/bookings", cfg.BookingHandler.Submit)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Staff dashboard routes (login is open, everything else sits behind
	// the session gate)
	if cfg.StaffHandler != nil && cfg.StaffGate != nil {
		r.Route("/staff", func(sr chi.Router) {
			sr.Post("/login", cfg.StaffHandler.Login)

			sr.Group(func(protected chi.Router) {
				protected.Use(httpmiddleware.StaffAuth(cfg.StaffGate))

				protected.Post("/logout", cfg.StaffHandler.Logout(sessionDevice))

				protected.Route("/appointments", func(r chi.Router) {
					r.Get("/", cfg.StaffHandler.ListAppointments)
					r.Delete("/", cfg.StaffHandler.ClearAll)
					r.Delete("/done", cfg.StaffHandler.ClearDone)
					r.Patch("/{id}/status", cfg.StaffHandler.UpdateStatus)
					r.Delete("/{id}", cfg.StaffHandler.DeleteAppointment)
				})

				protected.Route("/blackouts", func(r chi.Router) {
					r.Get("/", cfg.StaffHandler.ListBlackouts)
					r.Post("/", cfg.StaffHandler.CreateBlackout)
					r.Delete("/{id}", cfg.StaffHandler.DeleteBlackout)
				})

				protected.Route("/devices", func(r chi.Router) {
					r.Get("/", cfg.StaffHandler.ListDevices)
					r.Delete("/{id}", cfg.StaffHandler.RevokeDevice)
				})

				if cfg.StatsHandler != nil {
					protected.Get("/stats", cfg.StatsHandler.GetStats)
				}
			})
		})
	}

	return r
}

// sessionDevice resolves the device bound to the current staff session.
func sessionDevice(r *http.Request) (string, bool) {
	session, ok := httpmiddleware.StaffSessionFromContext(r.Context())
	if !ok {
		return "", false
	}
	return session.DeviceID, true
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok","time":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}
