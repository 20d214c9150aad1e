package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/careapp/internal/http/notice"
	"github.com/wolfman30/careapp/internal/identity"
	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/schedule"
	"github.com/wolfman30/careapp/internal/validation"
	"github.com/wolfman30/careapp/pkg/logging"
)

// Handler serves the /bookings routes.
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

// Routes mounts the booking endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Start)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Discard)
		r.Put("/provider", h.ChangeProvider)
		r.Post("/date", h.SelectDate)
		r.Post("/slot", h.SelectSlot)
		r.Post("/submit", h.Submit)
	})
}

type providerRequest struct {
	ProviderID string `json:"providerId"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type slotRequest struct {
	Slot string `json:"slot"`
}

// Start handles POST /bookings.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	view, err := h.service.Start(r.Context(), req.ProviderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	notice.WriteJSON(w, http.StatusCreated, view)
}

// Get handles GET /bookings/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	notice.WriteJSON(w, http.StatusOK, view)
}

// ChangeProvider handles PUT /bookings/{sessionID}/provider.
func (h *Handler) ChangeProvider(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	view, err := h.service.ChangeProvider(r.Context(), chi.URLParam(r, "sessionID"), req.ProviderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	notice.WriteJSON(w, http.StatusOK, view)
}

// SelectDate handles POST /bookings/{sessionID}/date.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	view, err := h.service.SelectDate(r.Context(), chi.URLParam(r, "sessionID"), req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	notice.WriteJSON(w, http.StatusOK, view)
}

// SelectSlot handles POST /bookings/{sessionID}/slot.
func (h *Handler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	view, err := h.service.SelectSlot(r.Context(), chi.URLParam(r, "sessionID"), req.Slot)
	if err != nil {
		h.writeError(w, err)
		return
	}
	notice.WriteJSON(w, http.StatusOK, view)
}

// Submit handles POST /bookings/{sessionID}/submit. A signed-in patient's id
// wins over any id in the body.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var form SubmitForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if patientID, ok := identity.PatientIDFromContext(r.Context()); ok {
		form.PatientID = patientID
	}
	appt, err := h.service.Submit(r.Context(), chi.URLParam(r, "sessionID"), form)
	if err != nil {
		h.writeError(w, err)
		return
	}
	notice.WriteJSON(w, http.StatusCreated, notice.Envelope{
		Data:   appt,
		Notice: notice.Success("Created Appointment Successfully!"),
	})
}

// Discard handles DELETE /bookings/{sessionID}.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *pysked.APIError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		notice.WriteError(w, http.StatusNotFound, "Booking session not found", "")
	case errors.Is(err, ErrSuperseded), errors.Is(err, ErrConflict):
		notice.WriteError(w, http.StatusConflict, "Booking changed, please retry", err.Error())
	case errors.Is(err, ErrProviderRequired),
		errors.Is(err, ErrNoSlotSelected),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrNoDateSelected),
		errors.Is(err, schedule.ErrUnknownSlot),
		validation.IsValidation(err):
		notice.WriteError(w, http.StatusBadRequest, "Error submitting data", err.Error())
	case errors.As(err, &apiErr):
		h.logger.Warn("booking upstream failure", "status", apiErr.Status, "error", err)
		notice.WriteError(w, http.StatusBadGateway, "Error submitting data", apiErr.Message)
	default:
		h.logger.Error("booking request failed", "error", err)
		notice.WriteError(w, http.StatusInternalServerError, "There was a problem submitting the data", err.Error())
	}
}
