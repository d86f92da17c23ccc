package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sahelmarket/marketplace-backend/internal/modules/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	products   map[uuid.UUID]*Product
	categories map[string]*Category
}

func newMemRepo() *memRepo {
	return &memRepo{products: map[uuid.UUID]*Product{}, categories: map[string]*Category{}}
}

func (m *memRepo) CreateProduct(_ context.Context, p *Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memRepo) GetProductByID(_ context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	p, ok := m.products[uid]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (m *memRepo) GetProductsByIDs(_ context.Context, ids []uuid.UUID) ([]*Product, error) {
	var out []*Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) ListBySeller(_ context.Context, sellerID string) ([]*Product, error) {
	var out []*Product
	for _, p := range m.products {
		if p.SellerID.String() == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) CountBySeller(ctx context.Context, sellerID string) (int, error) {
	list, _ := m.ListBySeller(ctx, sellerID)
	return len(list), nil
}

func (m *memRepo) ListFeatured(_ context.Context, limit int) ([]*Product, error) {
	var out []*Product
	for _, p := range m.products {
		if p.IsFeatured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateStock(_ context.Context, id, sellerID string, stock int) error {
	uid, _ := uuid.Parse(id)
	p, ok := m.products[uid]
	if !ok || p.SellerID.String() != sellerID {
		return ErrProductNotFound
	}
	p.Stock = stock
	return nil
}

func (m *memRepo) SetFeatured(_ context.Context, id string, featured bool) error {
	uid, _ := uuid.Parse(id)
	p, ok := m.products[uid]
	if !ok {
		return ErrProductNotFound
	}
	p.IsFeatured = featured
	return nil
}

func (m *memRepo) ListCategories(context.Context) ([]*Category, error) {
	var out []*Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) GetCategory(_ context.Context, id string) (*Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

type capLimiter struct{ max int }

func (c capLimiter) CheckProductLimit(_ context.Context, _ string, n int) error {
	if c.max > 0 && n >= c.max {
		return plan.ErrLimitReached
	}
	return nil
}

func TestCreateProduct(t *testing.T) {
	repo := newMemRepo()
	cat := &Category{ID: uuid.New(), Name: "Tissus"}
	repo.categories[cat.ID.String()] = cat
	svc := NewService(repo, capLimiter{max: 2})
	seller := uuid.New().String()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, seller, CreateProductRequest{
		CategoryID: cat.ID.String(), Name: "  Pagne wax  ", Price: 7500, Stock: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pagne wax", p.Name)
	assert.Equal(t, cat.ID, *p.CategoryID)
	assert.True(t, p.IsActive)
	assert.Equal(t, []string{}, p.Images)

	_, err = svc.CreateProduct(ctx, seller, CreateProductRequest{Name: "Bazin", Price: 12000})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, seller, CreateProductRequest{Name: "Kente", Price: 9000})
	assert.ErrorIs(t, err, plan.ErrLimitReached)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemRepo(), capLimiter{})
	seller := uuid.New().String()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, "not-a-uuid", CreateProductRequest{Name: "x", Price: 1})
	assert.ErrorContains(t, err, "invalid seller_id")
	_, err = svc.CreateProduct(ctx, seller, CreateProductRequest{Price: 1})
	assert.ErrorContains(t, err, "name is required")
	_, err = svc.CreateProduct(ctx, seller, CreateProductRequest{Name: "x"})
	assert.ErrorContains(t, err, "price must be greater than 0")
	_, err = svc.CreateProduct(ctx, seller, CreateProductRequest{Name: "x", Price: 1, Stock: -1})
	assert.ErrorContains(t, err, "stock must not be negative")
	_, err = svc.CreateProduct(ctx, seller, CreateProductRequest{Name: "x", Price: 1, CategoryID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUpdateStockChecksOwnership(t *testing.T) {
	repo := newMemRepo()
	owner := uuid.New()
	p := &Product{ID: uuid.New(), SellerID: owner, Name: "Savon", Price: 500, Stock: 1}
	repo.products[p.ID] = p
	svc := NewService(repo, capLimiter{})
	ctx := context.Background()

	require.NoError(t, svc.UpdateStock(ctx, owner.String(), p.ID.String(), 30))
	assert.Equal(t, 30, p.Stock)

	assert.ErrorIs(t, svc.UpdateStock(ctx, uuid.NewString(), p.ID.String(), 1), ErrProductNotFound)
	assert.Error(t, svc.UpdateStock(ctx, owner.String(), p.ID.String(), -3))
}

func TestListFeaturedCapsLimit(t *testing.T) {
	repo := newMemRepo()
	for i := 0; i < 60; i++ {
		p := &Product{ID: uuid.New(), IsFeatured: true}
		repo.products[p.ID] = p
	}
	svc := NewService(repo, capLimiter{})

	list, err := svc.ListFeatured(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, maxFeatured)

	list, err = svc.ListFeatured(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}
