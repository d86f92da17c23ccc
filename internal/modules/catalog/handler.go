package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sahelmarket/marketplace-backend/internal/modules/auth"
	"github.com/sahelmarket/marketplace-backend/internal/modules/plan"
	"github.com/sahelmarket/marketplace-backend/internal/modules/profile"
)

// Handler exposes storefront, seller and back-office product endpoints.
type Handler struct {
	service Service
	guard   *auth.Guard
}

func NewHandler(service Service, guard *auth.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/categories", h.listCategories)
	r.Get("/api/v1/products/featured", h.listFeatured) // ?limit=20
	r.Get("/api/v1/products/{id}", h.getProduct)

	r.Route("/api/v1/seller/products", func(r chi.Router) {
		r.Use(h.guard.Role(string(profile.RoleSeller)))
		r.Get("/", h.listSellerProducts)
		r.Post("/", h.createProduct)
		r.Patch("/{id}/stock", h.updateStock)
	})

	r.With(h.guard.Role(string(profile.RoleAdmin))).
		Patch("/api/v1/admin/products/{id}/featured", h.setFeatured)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, categories)
}

func (h *Handler) listFeatured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.service.ListFeatured(r.Context(), limit)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listSellerProducts(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := auth.UserIDFromContext(r.Context())
	products, err := h.service.ListSellerProducts(r.Context(), sellerID)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sellerID, _ := auth.UserIDFromContext(r.Context())
	p, err := h.service.CreateProduct(r.Context(), sellerID, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sellerID, _ := auth.UserIDFromContext(r.Context())
	if err := h.service.UpdateStock(r.Context(), sellerID, chi.URLParam(r, "id"), req.Stock); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"status": "stock updated", "stock": req.Stock})
}

func (h *Handler) setFeatured(w http.ResponseWriter, r *http.Request) {
	var req SetFeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.SetFeatured(r.Context(), chi.URLParam(r, "id"), req.Featured); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"status": "updated", "featured": req.Featured})
}

func respondErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrCategoryNotFound):
		code = http.StatusNotFound
	case errors.Is(err, plan.ErrLimitReached):
		code = http.StatusForbidden
	case strings.Contains(msg, "required") || strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must"):
		code = http.StatusBadRequest
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
