package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sahelmarket/marketplace-backend/internal/modules/auth"
)

type Handler struct {
	service Service
	guard   *auth.Guard
}

func NewHandler(service Service, guard *auth.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/api/v1/profiles", func(r chi.Router) {
		r.Use(h.guard.Authenticated)
		r.Get("/me", h.getMe)
		r.Get("/{id}", h.getProfile)
	})
	router.Get("/api/v1/deliverers", h.listDeliverers) // ?available=true
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	h.writeProfile(w, r, userID)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listDeliverers(w http.ResponseWriter, r *http.Request) {
	availableOnly := r.URL.Query().Get("available") == "true"
	deliverers, err := h.service.ListDeliverers(r.Context(), availableOnly)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, deliverers)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
