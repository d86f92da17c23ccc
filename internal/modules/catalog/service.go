package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProductLimiter enforces the seller's subscription plan.
type ProductLimiter interface {
	CheckProductLimit(ctx context.Context, sellerID string, currentProducts int) error
}

// Service defines catalog business logic for the storefront, seller dashboard
// and back office.
type Service interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	ListFeatured(ctx context.Context, limit int) ([]*Product, error)
	ListCategories(ctx context.Context) ([]*Category, error)

	ListSellerProducts(ctx context.Context, sellerID string) ([]*Product, error)
	CreateProduct(ctx context.Context, sellerID string, req CreateProductRequest) (*Product, error)
	UpdateStock(ctx context.Context, sellerID, productID string, stock int) error

	SetFeatured(ctx context.Context, productID string, featured bool) error
}

type service struct {
	repo    Repository
	limiter ProductLimiter
}

// NewService creates a new catalog service.
func NewService(repo Repository, limiter ProductLimiter) Service {
	return &service{repo: repo, limiter: limiter}
}

const maxFeatured = 50

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	return s.repo.GetProductsByIDs(ctx, ids)
}

func (s *service) ListFeatured(ctx context.Context, limit int) ([]*Product, error) {
	if limit <= 0 || limit > maxFeatured {
		limit = maxFeatured
	}
	return s.repo.ListFeatured(ctx, limit)
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) ListSellerProducts(ctx context.Context, sellerID string) ([]*Product, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *service) CreateProduct(ctx context.Context, sellerID string, req CreateProductRequest) (*Product, error) {
	sellerUUID, err := uuid.Parse(sellerID)
	if err != nil {
		return nil, fmt.Errorf("invalid seller_id: %w", err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be greater than 0")
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative")
	}

	p := &Product{
		ID:          uuid.New(),
		SellerID:    sellerUUID,
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		IsActive:    true,
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	if req.CategoryID != "" {
		c, err := s.repo.GetCategory(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &c.ID
	}

	count, err := s.repo.CountBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("count seller products: %w", err)
	}
	if err := s.limiter.CheckProductLimit(ctx, sellerID, count); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist product: %w", err)
	}
	return p, nil
}

func (s *service) UpdateStock(ctx context.Context, sellerID, productID string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	return s.repo.UpdateStock(ctx, productID, sellerID, stock)
}

func (s *service) SetFeatured(ctx context.Context, productID string, featured bool) error {
	return s.repo.SetFeatured(ctx, productID, featured)
}
