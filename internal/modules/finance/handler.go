package finance

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sahelmarket/marketplace-backend/internal/modules/auth"
	"github.com/sahelmarket/marketplace-backend/internal/modules/profile"
)

// Handler exposes the finance dashboards.
type Handler struct {
	service Service
	guard   *auth.Guard
}

func NewHandler(service Service, guard *auth.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.guard.Role(string(profile.RoleSeller))).Get("/api/v1/finance/seller/me", h.sellerSummary)
	r.With(h.guard.Role(string(profile.RoleAdmin))).Get("/api/v1/admin/sales", h.platformSales) // ?from=2024-01-01&to=2024-01-31
}

func (h *Handler) sellerSummary(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserIDFromContext(r.Context())
	sum, err := h.service.SellerSummary(r.Context(), id)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, sum)
}

const dateLayout = "2006-01-02"

func (h *Handler) platformSales(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(dateLayout, v); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(dateLayout, v); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		to = to.AddDate(0, 0, 1) // inclusive
	}

	report, err := h.service.PlatformSales(r.Context(), from, to)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid range") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, report)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
