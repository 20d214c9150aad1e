package diagnostics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/careapp/internal/http/notice"
	"github.com/wolfman30/careapp/pkg/logging"
)

// Handler serves the /diagnostics routes.
type Handler struct {
	chat   *Chat
	logger *logging.Logger
}

// NewHandler creates a diagnostics handler.
func NewHandler(chat *Chat, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{chat: chat, logger: logger}
}

// Routes mounts the chat endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Open)
	r.Get("/{chatID}", h.Transcript)
	r.Delete("/{chatID}", h.Clear)
	r.Post("/{chatID}/messages", h.Send)
}

// Open handles POST /diagnostics and returns a fresh chat id.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	notice.WriteJSON(w, http.StatusCreated, map[string]string{"chatId": uuid.NewString()})
}

type sendRequest struct {
	Body string `json:"body"`
}

// Send handles POST /diagnostics/{chatID}/messages.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notice.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	ex, err := h.chat.Send(r.Context(), chi.URLParam(r, "chatID"), req.Body)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			notice.WriteError(w, http.StatusBadRequest, "Input Required", "Please enter a value before submitting.")
			return
		}
		notice.WriteError(w, http.StatusBadGateway, "Error", "Failed to submit the request.")
		return
	}
	notice.WriteJSON(w, http.StatusOK, ex)
}

// Transcript handles GET /diagnostics/{chatID}.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.Transcript(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		h.logger.Error("failed to load transcript", "error", err)
		notice.WriteError(w, http.StatusInternalServerError, "Unable to load chat", "")
		return
	}
	notice.WriteJSON(w, http.StatusOK, msgs)
}

// Clear handles DELETE /diagnostics/{chatID}.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Clear(r.Context(), chi.URLParam(r, "chatID")); err != nil {
		h.logger.Error("failed to clear transcript", "error", err)
		notice.WriteError(w, http.StatusInternalServerError, "Unable to clear chat", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
