package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for product and category storage.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*Product, error)
	CountBySeller(ctx context.Context, sellerID string) (int, error)
	ListFeatured(ctx context.Context, limit int) ([]*Product, error)
	// UpdateStock only touches products owned by sellerID.
	UpdateStock(ctx context.Context, id, sellerID string, stock int) error
	SetFeatured(ctx context.Context, id string, featured bool) error

	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
}
