package reviews

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/careapp/internal/http/notice"
	"github.com/wolfman30/careapp/internal/identity"
	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/pkg/logging"
)

// Handler serves review and rating routes under /providers/{providerID}.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a reviews handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the endpoints on a router already scoped to {providerID}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/reviews", h.List)
	r.Post("/reviews", h.Create)
	r.Post("/ratings", h.Rate)
}

type reviewRequest struct {
	PatientID  string `json:"patientId"`
	ReviewText string `json:"reviewText"`
}

type ratingRequest struct {
	PatientID string `json:"patientId"`
	Rating    int    `json:"rating"`
}

func patientFor(r *http.Request, fromBody string) string {
	if id, ok := identity.PatientIDFromContext(r.Context()); ok {
		return id
	}
	return fromBody
}

// List handles GET /providers/{providerID}/reviews.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ForProvider(r.Context(), chi.URLParam(r, "providerID"))
	if err != nil {
		h.logger.Error("error fetching reviews", "error", err)
		notice.WriteError(w, http.StatusBadGateway, "Error fetching reviews", err.Error())
		return
	}
	notice.WriteJSON(w, http.StatusOK, list)
}

// Create handles POST /providers/{providerID}/reviews.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	review, err := h.service.Review(r.Context(), chi.URLParam(r, "providerID"), patientFor(r, req.PatientID), req.ReviewText)
	if err != nil {
		h.writeError(w, "Failed to submit review", err)
		return
	}
	notice.WriteJSON(w, http.StatusCreated, notice.Envelope{Data: review, Notice: notice.Success("Review submitted")})
}

// Rate handles POST /providers/{providerID}/ratings.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	rating, err := h.service.Rate(r.Context(), chi.URLParam(r, "providerID"), patientFor(r, req.PatientID), req.Rating)
	if err != nil {
		h.writeError(w, "Failed to submit rating", err)
		return
	}
	notice.WriteJSON(w, http.StatusCreated, notice.Envelope{Data: rating, Notice: notice.Success("Rating submitted")})
}

func (h *Handler) writeError(w http.ResponseWriter, text1 string, err error) {
	var apiErr *pysked.APIError
	switch {
	case errors.Is(err, ErrEmptyReview), errors.Is(err, ErrRatingOutOfRange), errors.Is(err, ErrProviderRequired):
		notice.WriteError(w, http.StatusBadRequest, text1, err.Error())
	case errors.As(err, &apiErr):
		notice.WriteError(w, http.StatusBadGateway, text1, apiErr.Message)
	default:
		h.logger.Error(text1, "error", err)
		notice.WriteError(w, http.StatusBadGateway, text1, err.Error())
	}
}
