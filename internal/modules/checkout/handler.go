package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sahelmarket/marketplace-backend/internal/modules/auth"
	"github.com/sahelmarket/marketplace-backend/internal/modules/currency"
	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
	"github.com/sahelmarket/marketplace-backend/internal/modules/plan"
	"github.com/sahelmarket/marketplace-backend/internal/modules/profile"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	service Service
	guard   *auth.Guard
}

func NewHandler(service Service, guard *auth.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	// Anyone with a profile may buy; sellers cannot buy their own products.
	r.With(h.guard.Role(
		string(profile.RoleClient), string(profile.RoleSeller),
		string(profile.RoleDeliverer), string(profile.RoleAdmin),
	)).Post("/api/v1/checkout", h.checkout)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	id, _ := auth.UserIDFromContext(r.Context())
	caller := Caller{ID: id, Email: auth.EmailFromContext(r.Context())}

	res, err := h.service.Checkout(r.Context(), caller, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	respond(w, status, res)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func respondErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, order.ErrInsufficientStock), errors.Is(err, plan.ErrLimitReached):
		code = http.StatusConflict
	case errors.Is(err, ErrProductUnavailable), errors.Is(err, ErrInvalidDeliverer):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrOwnProduct),
		errors.Is(err, currency.ErrUnknownCurrency),
		strings.Contains(msg, "invalid"), strings.Contains(msg, "required"):
		code = http.StatusBadRequest
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
