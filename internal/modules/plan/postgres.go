package plan

import (
	"context"
	"database/sql"
	"errors"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL subscription plan repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const planColumns = `sp.id, sp.name, sp.role, sp.price, sp.max_products, sp.max_ads,
	sp.max_wallet_balance, sp.max_concurrent_deliveries, sp.is_active, sp.created_at, sp.updated_at`

func (r *postgresRepository) ListPlans(ctx context.Context, role string) ([]*SubscriptionPlan, error) {
	query := "SELECT " + planColumns + " FROM subscription_plans sp WHERE sp.is_active"
	var args []interface{}
	if role != "" {
		query += " AND sp.role = $1"
		args = append(args, role)
	}
	query += " ORDER BY sp.price"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*SubscriptionPlan{}
	for rows.Next() {
		p := &SubscriptionPlan{}
		if err := scanPlan(rows, p); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *postgresRepository) GetPlanForProfile(ctx context.Context, profileID string) (*SubscriptionPlan, error) {
	p := &SubscriptionPlan{}
	err := scanPlan(r.db.QueryRowContext(ctx, `
		SELECT `+planColumns+`
		FROM profiles pr
		JOIN subscription_plans sp ON sp.id = pr.subscription_plan_id
		WHERE pr.id = $1`, profileID), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanPlan(row rowScanner, p *SubscriptionPlan) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Role,
		&p.Price,
		&p.MaxProducts,
		&p.MaxAds,
		&p.MaxWalletBalance,
		&p.MaxConcurrentDeliveries,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
