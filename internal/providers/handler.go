package providers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/careapp/internal/http/notice"
	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/schedule"
	"github.com/wolfman30/careapp/internal/validation"
	"github.com/wolfman30/careapp/pkg/logging"
)

// Handler serves the /providers routes.
type Handler struct {
	service   *Service
	homeLimit int
	logger    *logging.Logger
}

// NewHandler creates a provider handler. homeLimit caps the home screen list.
func NewHandler(service *Service, homeLimit int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, homeLimit: homeLimit, logger: logger}
}

// Routes mounts the directory endpoints on r. perProvider registers further
// routes under /{providerID}, such as reviews.
func (h *Handler) Routes(r chi.Router, perProvider ...func(chi.Router)) {
	r.Get("/", h.List)
	r.Post("/", h.Register)
	r.Get("/home", h.Home)
	r.Route("/{providerID}", func(r chi.Router) {
		r.Get("/calendar", h.Calendar)
		for _, mount := range perProvider {
			mount(r)
		}
	})
}

// List handles GET /providers?q=&limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			notice.WriteError(w, http.StatusBadRequest, "Invalid limit", raw)
			return
		}
		limit = n
	}
	h.writeProviders(w, r, r.URL.Query().Get("q"), limit)
}

// Home handles GET /providers/home: the first few providers.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.writeProviders(w, r, "", h.homeLimit)
}

func (h *Handler) writeProviders(w http.ResponseWriter, r *http.Request, query string, limit int) {
	list, err := h.service.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to list providers", "error", err)
		notice.WriteError(w, http.StatusBadGateway, "Error fetching providers", err.Error())
		return
	}
	notice.WriteJSON(w, http.StatusOK, list)
}

// Register handles POST /providers.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form RegistrationForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	reg, err := h.service.Register(r.Context(), form)
	if err != nil {
		if validation.IsValidation(err) {
			notice.WriteError(w, http.StatusBadRequest, "Error submitting data", err.Error())
			return
		}
		var apiErr *pysked.APIError
		if errors.As(err, &apiErr) {
			notice.WriteError(w, http.StatusBadGateway, "Error submitting data", apiErr.Message)
			return
		}
		notice.WriteError(w, http.StatusBadGateway, "There was a problem submitting the data", err.Error())
		return
	}
	notice.WriteJSON(w, http.StatusCreated, notice.Envelope{
		Data:   reg,
		Notice: notice.Success("Provider registered successfully!"),
	})
}

// Calendar handles GET /providers/{providerID}/calendar?from=&to=.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	var window schedule.Window
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			notice.WriteError(w, http.StatusBadRequest, "Invalid from date", err.Error())
			return
		}
		window.From = d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			notice.WriteError(w, http.StatusBadRequest, "Invalid to date", err.Error())
			return
		}
		window.To = d
	}

	avail, err := h.service.Availability(r.Context(), chi.URLParam(r, "providerID"), window)
	if err != nil {
		if errors.Is(err, ErrProviderRequired) {
			notice.WriteError(w, http.StatusBadRequest, "Missing provider", "")
			return
		}
		h.logger.Warn("failed to load provider schedule", "error", err)
		notice.WriteError(w, http.StatusBadGateway, "Unable to load schedule", err.Error())
		return
	}
	notice.WriteJSON(w, http.StatusOK, avail)
}
