package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const selectProfile = `
	SELECT id, full_name, email, phone, role, badge, subscription_plan_id,
	       delivery_fee, is_available, created_at, updated_at
	FROM profiles`

func (r *postgresRepository) GetProfileByID(ctx context.Context, id string) (*Profile, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	p, err := scanProfile(r.db.QueryRowContext(ctx, selectProfile+" WHERE id = $1", parsedID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepository) ListByRole(ctx context.Context, role Role, availableOnly bool) ([]*Profile, error) {
	query := selectProfile + " WHERE role = $1"
	if availableOnly {
		query += " AND is_available"
	}
	query += " ORDER BY full_name"

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []*Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var planID uuid.NullUUID
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&p.Phone,
		&p.Role,
		&p.Badge,
		&planID,
		&p.DeliveryFee,
		&p.IsAvailable,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if planID.Valid {
		p.SubscriptionPlanID = &planID.UUID
	}
	return p, nil
}
