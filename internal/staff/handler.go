package staff

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightsmile-dental/clinic-api/internal/appointments"
	"github.com/brightsmile-dental/clinic-api/internal/blackouts"
	"github.com/brightsmile-dental/clinic-api/internal/schedule"
	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

// Handler serves the staff dashboard API: appointment review, blackout
// management, and device management.
type Handler struct {
	appointments appointments.Repository
	blackouts    blackouts.Repository
	gate         *Gate
	devices      *DeviceStore
	logger       *logging.Logger
}

// NewHandler creates the staff handler.
func NewHandler(apts appointments.Repository, blks blackouts.Repository, gate *Gate, devices *DeviceStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		appointments: apts,
		blackouts:    blks,
		gate:         gate,
		devices:      devices,
		logger:       logger,
	}
}

type loginRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	RememberDevice bool   `json:"remember_device"`
	DeviceLabel    string `json:"device_label"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	DeviceID  string    `json:"device_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /staff/login requests.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, device, err := h.gate.Login(r.Context(), req.Username, req.Password, req.RememberDevice, req.DeviceLabel)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			http.Error(w, "invalid username or password", http.StatusUnauthorized)
			return
		}
		h.logger.Error("staff login failed", "error", err)
		http.Error(w, "login unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, DeviceID: device.ID, ExpiresAt: device.ExpiresAt})
}

// Logout handles POST /staff/logout requests; the session resolver supplies
// the device bound to the presented token.
func (h *Handler) Logout(sessionDevice func(r *http.Request) (string, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, ok := sessionDevice(r)
		if !ok {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		if err := h.gate.Logout(r.Context(), deviceID); err != nil {
			h.logger.Error("staff logout failed", "error", err)
			http.Error(w, "logout failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListAppointments handles GET /staff/appointments requests, newest first.
// A store failure degrades to an empty list so the dashboard keeps rendering.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.appointments.List(r.Context())
	if err != nil {
		h.logger.Warn("appointments feed unavailable", "error", err)
		writeJSON(w, http.StatusOK, appointmentsResponse{Appointments: []*appointments.Appointment{}, Degraded: true})
		return
	}
	if list == nil {
		list = []*appointments.Appointment{}
	}
	writeJSON(w, http.StatusOK, appointmentsResponse{Appointments: list})
}

type appointmentsResponse struct {
	Appointments []*appointments.Appointment `json:"appointments"`
	Degraded     bool                        `json:"degraded,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /staff/appointments/{id}/status requests.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	status := appointments.Status(req.Status)
	if !status.Valid() {
		http.Error(w, "status must be Pending, Done, or Didn't show up", http.StatusUnprocessableEntity)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.appointments.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("status update failed", "error", err, "id", id)
		http.Error(w, "could not update appointment", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAppointment handles DELETE /staff/appointments/{id} requests.
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.appointments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("appointment delete failed", "error", err, "id", id)
		http.Error(w, "could not delete appointment", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// ClearDone handles DELETE /staff/appointments/done requests: one statement,
// Done rows only.
func (h *Handler) ClearDone(w http.ResponseWriter, r *http.Request) {
	n, err := h.appointments.DeleteByStatus(r.Context(), appointments.StatusDone)
	if err != nil {
		h.logger.Error("clear done failed", "error", err)
		http.Error(w, "could not clear completed appointments", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

// ClearAll handles DELETE /staff/appointments requests. Irreversible; the
// dashboard fronts this with a confirmation dialog, the API just does it
// atomically.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.appointments.DeleteAll(r.Context())
	if err != nil {
		h.logger.Error("clear all failed", "error", err)
		http.Error(w, "could not clear appointments", http.StatusBadGateway)
		return
	}
	h.logger.Info("all appointments cleared", "deleted", n)
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

type blackoutRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time,omitempty"`
	FullDay bool   `json:"full_day"`
	Reason  string `json:"reason,omitempty"`
}

// CreateBlackout handles POST /staff/blackouts requests. Either a specific
// time or full_day must be given, mirroring the schedule form.
func (h *Handler) CreateBlackout(w http.ResponseWriter, r *http.Request) {
	var req blackoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := schedule.ParseDateKey(strings.TrimSpace(req.Date), time.UTC); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
		return
	}

	var slot *schedule.TimeSlot
	if !req.FullDay {
		if strings.TrimSpace(req.Time) == "" {
			http.Error(w, "specify a time or mark the whole day", http.StatusUnprocessableEntity)
			return
		}
		parsed, err := schedule.ParseSlot(req.Time)
		if err != nil {
			http.Error(w, "time must sit on the half-hour grid", http.StatusUnprocessableEntity)
			return
		}
		slot = &parsed
	}

	b, err := h.blackouts.Insert(r.Context(), blackouts.NewBlackoutRequest{
		Date:   strings.TrimSpace(req.Date),
		Slot:   slot,
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		h.logger.Error("blackout insert failed", "error", err)
		http.Error(w, "could not save unavailable schedule", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// ListBlackouts handles GET /staff/blackouts requests.
func (h *Handler) ListBlackouts(w http.ResponseWriter, r *http.Request) {
	list, err := h.blackouts.List(r.Context())
	if err != nil {
		h.logger.Warn("blackouts feed unavailable", "error", err)
		writeJSON(w, http.StatusOK, blackoutsResponse{Blackouts: []*blackouts.Blackout{}, Degraded: true})
		return
	}
	if list == nil {
		list = []*blackouts.Blackout{}
	}
	writeJSON(w, http.StatusOK, blackoutsResponse{Blackouts: list})
}

type blackoutsResponse struct {
	Blackouts []*blackouts.Blackout `json:"blackouts"`
	Degraded  bool                  `json:"degraded,omitempty"`
}

// DeleteBlackout handles DELETE /staff/blackouts/{id} requests.
func (h *Handler) DeleteBlackout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.blackouts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, blackouts.ErrNotFound) {
			http.Error(w, "blackout not found", http.StatusNotFound)
			return
		}
		h.logger.Error("blackout delete failed", "error", err, "id", id)
		http.Error(w, "could not delete unavailable schedule", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDevices handles GET /staff/devices requests.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	list, err := h.devices.List(r.Context())
	if err != nil {
		h.logger.Error("device list failed", "error", err)
		http.Error(w, "could not list devices", http.StatusBadGateway)
		return
	}
	if list == nil {
		list = []Device{}
	}
	writeJSON(w, http.StatusOK, map[string][]Device{"devices": list})
}

// RevokeDevice handles DELETE /staff/devices/{id} requests.
func (h *Handler) RevokeDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.devices.Revoke(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("device revoke failed", "error", err)
		http.Error(w, "could not revoke device", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
