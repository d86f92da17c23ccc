package payment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sahelmarket/marketplace-backend/internal/modules/auth"
	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
	"github.com/sahelmarket/marketplace-backend/internal/modules/profile"
)

// Handler exposes payment HTTP endpoints.
type Handler struct {
	service Service
	guard   *auth.Guard
}

func NewHandler(service Service, guard *auth.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// RegisterPayPalRoutes mounts the PayPal endpoints the storefront calls.
func (h *Handler) RegisterPayPalRoutes(r chi.Router) {
	r.Get("/api/paypal/test", h.paypalTest)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticated)
		r.Post("/api/paypal/create-order", h.createPayPalOrder)
		r.Post("/api/paypal/capture-order", h.capturePayPalOrder)
	})
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.With(h.guard.Role(
			string(profile.RoleClient), string(profile.RoleSeller),
			string(profile.RoleDeliverer), string(profile.RoleAdmin),
		)).Get("/order/{order_id}", h.listByOrder)

		// Manual settlement of mobile money transfers
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Role(string(profile.RoleAdmin)))
			r.Post("/{id}/confirm", h.confirm)
			r.Post("/{id}/reject", h.reject)
		})
	})
}

func (h *Handler) paypalTest(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.ConfigStatus())
}

func (h *Handler) createPayPalOrder(w http.ResponseWriter, r *http.Request) {
	var req CreatePayPalOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	clientID, _ := auth.UserIDFromContext(r.Context())
	id, err := h.service.CreatePayPalOrder(r.Context(), clientID, req)
	if err != nil {
		log.Printf("paypal create-order: %v", err)
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) capturePayPalOrder(w http.ResponseWriter, r *http.Request) {
	var req CapturePayPalOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	clientID, _ := auth.UserIDFromContext(r.Context())
	resp, err := h.service.CapturePayPal(r.Context(), clientID, req)
	if err != nil {
		log.Printf("paypal capture-order %s: %v", req.PayPalOrderID, err)
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, resp)
}

func (h *Handler) listByOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserIDFromContext(r.Context())
	viewer := order.Viewer{ID: id, Role: auth.RoleFromContext(r.Context())}
	payments, err := h.service.ListByOrder(r.Context(), viewer, chi.URLParam(r, "order_id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if payments == nil {
		payments = []*Payment{}
	}
	respond(w, http.StatusOK, payments)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.ConfirmPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.RejectPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func respondErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, order.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, order.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrPayPalMismatch):
		code = http.StatusConflict
	case errors.Is(err, ErrCaptureFailed):
		code = http.StatusPaymentRequired
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"),
		strings.Contains(msg, "greater than"), strings.Contains(msg, "already paid"):
		code = http.StatusBadRequest
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
