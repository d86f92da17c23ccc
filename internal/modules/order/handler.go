package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sahelmarket/marketplace-backend/internal/modules/auth"
	"github.com/sahelmarket/marketplace-backend/internal/modules/profile"
)

// Handler exposes order HTTP endpoints for every dashboard.
type Handler struct {
	service Service
	guard   *auth.Guard
}

func NewHandler(service Service, guard *auth.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

var anyRole = []string{
	string(profile.RoleClient), string(profile.RoleSeller),
	string(profile.RoleDeliverer), string(profile.RoleAdmin),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(h.guard.Role(anyRole...))
		r.Get("/{id}", h.getOrder)                // GET   /api/v1/orders/{id}
		r.Patch("/{id}/status", h.updateStatus)   // PATCH /api/v1/orders/{id}/status
		r.Post("/{id}/cancel", h.cancelOrder)     // POST  /api/v1/orders/{id}/cancel
	})

	r.With(h.guard.Role(anyRole...)).Get("/api/v1/client/orders", h.listClientOrders)
	r.With(h.guard.Role(string(profile.RoleSeller))).Get("/api/v1/seller/orders", h.listSellerOrders)          // ?status=pending
	r.With(h.guard.Role(string(profile.RoleDeliverer))).Get("/api/v1/deliverer/orders", h.listDelivererOrders) // ?status=shipped
	r.With(h.guard.Role(string(profile.RoleAdmin))).Get("/api/v1/admin/orders", h.listAllOrders)               // ?status=
}

func viewerFrom(r *http.Request) Viewer {
	id, _ := auth.UserIDFromContext(r.Context())
	return Viewer{ID: id, Role: auth.RoleFromContext(r.Context())}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), viewerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), viewerFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelOrder(r.Context(), viewerFrom(r), chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "order cancelled"})
}

func (h *Handler) listClientOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, Filter{ClientID: viewerFrom(r).ID})
}

func (h *Handler) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, Filter{SellerID: viewerFrom(r).ID, Status: Status(r.URL.Query().Get("status"))})
}

func (h *Handler) listDelivererOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, Filter{DelivererID: viewerFrom(r).ID, Status: Status(r.URL.Query().Get("status"))})
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, Filter{Status: Status(r.URL.Query().Get("status"))})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, f Filter) {
	orders, err := h.service.ListOrders(r.Context(), f)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func respondErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		code = http.StatusForbidden
	case strings.Contains(msg, "cannot transition") || strings.Contains(msg, "can be cancelled"):
		code = http.StatusUnprocessableEntity
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
