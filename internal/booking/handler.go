package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brightsmile-dental/clinic-api/pkg/logging"
)

// Handler handles the public booking submission endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a booking handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// Submit handles POST /bookings requests.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	apt, err := h.service.Submit(r.Context(), req)
	if err != nil {
		var verr ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid intake", Fields: verr})
		case errors.Is(err, ErrSlotTaken):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "slot no longer available, please pick another time"})
		default:
			h.logger.Error("booking insert failed", "error", err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not save your booking, please try again"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, apt)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
