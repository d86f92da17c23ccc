package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectProduct = `
	SELECT id, seller_id, category_id, name, description, price, stock, images,
	       is_featured, is_active, created_at, updated_at
	FROM products`

func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, seller_id, category_id, name, description, price, stock, images, is_featured, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.SellerID, p.CategoryID, p.Name, p.Description, p.Price, p.Stock,
		pq.Array(p.Images), p.IsFeatured, p.IsActive)
	return err
}

func (r *postgresRepo) GetProductByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, selectProduct+" WHERE id=$1", uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *postgresRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	return r.queryProducts(ctx, selectProduct+" WHERE id = ANY($1::uuid[])", pq.Array(strIDs))
}

func (r *postgresRepo) ListBySeller(ctx context.Context, sellerID string) ([]*Product, error) {
	return r.queryProducts(ctx, selectProduct+" WHERE seller_id=$1 ORDER BY created_at DESC", sellerID)
}

func (r *postgresRepo) CountBySeller(ctx context.Context, sellerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE seller_id=$1 AND is_active`, sellerID).Scan(&n)
	return n, err
}

func (r *postgresRepo) ListFeatured(ctx context.Context, limit int) ([]*Product, error) {
	return r.queryProducts(ctx,
		selectProduct+" WHERE is_featured AND is_active AND stock > 0 ORDER BY updated_at DESC LIMIT $1", limit)
}

func (r *postgresRepo) UpdateStock(ctx context.Context, id, sellerID string, stock int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock=$1, updated_at=$2 WHERE id=$3 AND seller_id=$4`,
		stock, time.Now(), id, sellerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *postgresRepo) SetFeatured(ctx context.Context, id string, featured bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_featured=$1, updated_at=$2 WHERE id=$3`, featured, time.Now(), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, parent_id, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresRepo) GetCategory(ctx context.Context, id string) (*Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT id, name, parent_id, created_at FROM categories WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	return c, err
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanProduct(row rowScanner) (*Product, error) {
	p := &Product{}
	var categoryID uuid.NullUUID
	var images pq.StringArray
	err := row.Scan(&p.ID, &p.SellerID, &categoryID, &p.Name, &p.Description,
		&p.Price, &p.Stock, &images, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.UUID
	}
	p.Images = []string(images)
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

func scanCategory(row rowScanner) (*Category, error) {
	c := &Category{}
	var parentID uuid.NullUUID
	if err := row.Scan(&c.ID, &c.Name, &parentID, &c.CreatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.UUID
	}
	return c, nil
}

func (r *postgresRepo) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
