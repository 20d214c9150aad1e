package appointments

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

// Handler serves the /appointments routes.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the appointment endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/calendar", h.Calendar)
	r.Get("/day/{date}", h.Day)
	r.Post("/search", h.Search)
	r.Put("/{appointmentID}", h.Update)
	r.Delete("/{appointmentID}", h.Delete)
}

// patientScope prefers the signed-in patient over the query string.
func patientScope(r *http.Request) string {
	if id, ok := identity.PatientIDFromContext(r.Context()); ok {
		return id
	}
	return r.URL.Query().Get("patientId")
}

// authorize confirms a signed-in patient owns appointmentID and writes the
// error response when they do not. Anonymous requests pass through.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, appointmentID string) bool {
	patientID, ok := identity.PatientIDFromContext(r.Context())
	if !ok {
		return true
	}
	err := h.service.CheckOwner(r.Context(), patientID, appointmentID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotOwned):
		h.logger.Warn("patient tried to modify another patient's appointment", "patient_id", patientID, "appointment_id", appointmentID)
		notice.WriteError(w, http.StatusNotFound, "Appointment not found", "")
	default:
		notice.WriteError(w, http.StatusBadGateway, "Failed to load appointments.", upstreamMessage(err))
	}
	return false
}

// Calendar handles GET /appointments/calendar.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.service.Calendar(r.Context(), patientScope(r))
	if err != nil {
		h.logger.Error("failed to load appointments", "error", err)
		notice.WriteError(w, http.StatusBadGateway, "Failed to load appointments.", upstreamMessage(err))
		return
	}
	notice.WriteJSON(w, http.StatusOK, cal)
}

// Day handles GET /appointments/day/{date}.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	d, err := schedule.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	appt, err := h.service.OnDate(r.Context(), patientScope(r), d)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notice.WriteError(w, http.StatusNotFound, "No appointment on this day", "")
			return
		}
		notice.WriteError(w, http.StatusBadGateway, "Failed to load appointments.", upstreamMessage(err))
		return
	}
	notice.WriteJSON(w, http.StatusOK, appt)
}

// Search handles POST /appointments/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req pysked.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	page, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.logger.Error("appointment search failed", "error", err)
		notice.WriteError(w, http.StatusBadGateway, "Search failed", upstreamMessage(err))
		return
	}
	notice.WriteJSON(w, http.StatusOK, page)
}

// Update handles PUT /appointments/{appointmentID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	appointmentID := chi.URLParam(r, "appointmentID")
	if patientID, ok := identity.PatientIDFromContext(r.Context()); ok {
		req.PatientID = patientID
	}
	if !h.authorize(w, r, appointmentID) {
		return
	}
	appt, err := h.service.Update(r.Context(), appointmentID, req)
	if err != nil {
		if validation.IsValidation(err) || errors.Is(err, schedule.ErrInvalidDate) || errors.Is(err, schedule.ErrInvalidTime) {
			notice.WriteError(w, http.StatusBadRequest, "Error submitting data", err.Error())
			return
		}
		notice.WriteError(w, http.StatusBadGateway, "There was a problem submitting the data", upstreamMessage(err))
		return
	}
	notice.WriteJSON(w, http.StatusOK, notice.Envelope{
		Data:   appt,
		Notice: notice.Success("Updated Appointment Successfully!"),
	})
}

// Delete handles DELETE /appointments/{appointmentID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	if !h.authorize(w, r, appointmentID) {
		return
	}
	if err := h.service.Delete(r.Context(), appointmentID); err != nil {
		if pysked.IsNotFound(err) {
			notice.WriteError(w, http.StatusNotFound, "Error deleting data", upstreamMessage(err))
			return
		}
		notice.WriteError(w, http.StatusBadGateway, "There was a problem deleting the data", upstreamMessage(err))
		return
	}
	notice.WriteJSON(w, http.StatusOK, notice.Envelope{Notice: notice.Success("Deleted Appointment Successfully!")})
}

func upstreamMessage(err error) string {
	var apiErr *pysked.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
