package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the chat notification route used by the front-end.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

type notifyRequest struct {
	Message string `json:"message"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/telegram/notify", h.notify)
}

// notify always answers 200 once the payload is valid: delivery is best effort.
func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if err := h.service.Notify(r.Context(), req.Message); err != nil {
		log.Printf("notify: telegram: %v", err)
		respond(w, http.StatusOK, map[string]bool{"success": false})
		return
	}
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
