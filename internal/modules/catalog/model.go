package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Product is an item listed by a seller. Price is in XOF.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	SellerID    uuid.UUID  `json:"seller_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	Images      []string   `json:"images"`
	IsFeatured  bool       `json:"is_featured"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Category is a node of the category tree; ParentID is nil for roots.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateProductRequest is the payload a seller submits to list a product.
// Images are URLs already uploaded to the storage provider.
type CreateProductRequest struct {
	CategoryID  string   `json:"category_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images,omitempty"`
}

// UpdateStockRequest sets the absolute stock of a product.
type UpdateStockRequest struct {
	Stock int `json:"stock"`
}

// SetFeaturedRequest toggles the featured flag from the back office.
type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}
