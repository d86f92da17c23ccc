package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository runs the read-only reporting queries.
type Repository interface {
	SellerTotals(ctx context.Context, sellerID string) (*SellerSummary, error)
	SellerStatusCounts(ctx context.Context, sellerID string) ([]*StatusCount, error)
	DailySales(ctx context.Context, from, to time.Time) ([]*DailySales, error)
	SalesByMethod(ctx context.Context, from, to time.Time) ([]*MethodSales, error)
}

type sqlxRepo struct{ db *sqlx.DB }

func NewRepository(db *sqlx.DB) Repository { return &sqlxRepo{db: db} }

// SellerTotals sums the goods a seller sold. Fees carried in total_xof are
// not the seller's and stay out of both revenue figures.
func (r *sqlxRepo) SellerTotals(ctx context.Context, sellerID string) (*SellerSummary, error) {
	const q = `
		SELECT COUNT(*) AS order_count,
		       COALESCE(SUM(i.goods) FILTER (WHERE o.payment_status = 'completed' AND o.status <> 'cancelled'), 0) AS paid_revenue,
		       COALESCE(SUM(i.goods) FILTER (WHERE o.payment_status = 'pending' AND o.status <> 'cancelled'), 0) AS pending_revenue
		FROM orders o
		JOIN LATERAL (
		    SELECT COALESCE(SUM(line_total), 0) AS goods FROM order_items WHERE order_id = o.id
		) i ON TRUE
		WHERE o.seller_id = $1`
	var s SellerSummary
	if err := r.db.GetContext(ctx, &s, q, sellerID); err != nil {
		return nil, fmt.Errorf("seller totals: %w", err)
	}
	s.SellerID = sellerID
	return &s, nil
}

func (r *sqlxRepo) SellerStatusCounts(ctx context.Context, sellerID string) ([]*StatusCount, error) {
	var out []*StatusCount
	err := r.db.SelectContext(ctx, &out,
		`SELECT status, COUNT(*) AS count FROM orders WHERE seller_id = $1 GROUP BY status`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("seller status counts: %w", err)
	}
	return out, nil
}

func (r *sqlxRepo) DailySales(ctx context.Context, from, to time.Time) ([]*DailySales, error) {
	const q = `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*) AS orders,
		       COALESCE(SUM(total_xof), 0) AS total_xof,
		       COALESCE(SUM(total_xof) FILTER (WHERE payment_status = 'completed'), 0) AS paid_xof
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'
		GROUP BY 1
		ORDER BY 1`
	var out []*DailySales
	if err := r.db.SelectContext(ctx, &out, q, from, to); err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	return out, nil
}

func (r *sqlxRepo) SalesByMethod(ctx context.Context, from, to time.Time) ([]*MethodSales, error) {
	const q = `
		SELECT payment_method,
		       COUNT(*) AS orders,
		       COALESCE(SUM(total_xof), 0) AS total_xof,
		       COALESCE(SUM(total_xof) FILTER (WHERE payment_status = 'completed'), 0) AS paid_xof
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'
		GROUP BY payment_method
		ORDER BY payment_method`
	var out []*MethodSales
	if err := r.db.SelectContext(ctx, &out, q, from, to); err != nil {
		return nil, fmt.Errorf("sales by method: %w", err)
	}
	return out, nil
}
