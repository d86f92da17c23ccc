package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines data access for payment rows.
type Repository interface {
	// CreatePayments inserts every row in one transaction.
	CreatePayments(ctx context.Context, payments []*Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Payment, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreatePayments(ctx context.Context, payments []*Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, p := range payments {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.CreatedAt, p.UpdatedAt = now, now
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payments
			  (id, order_id, method, status, amount, currency, provider,
			   transaction_id, phone_number, payer_email, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			p.ID, p.OrderID, p.Method, p.Status, p.Amount, p.Currency,
			nilIfEmpty(p.Provider), nilIfEmpty(p.TransactionID),
			nilIfEmpty(p.PhoneNumber), nilIfEmpty(p.PayerEmail),
			p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert payment for order %s: %w", p.OrderID, err)
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, selectSQL+" WHERE id=$1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepo) ListByOrder(ctx context.Context, orderID string) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, selectSQL+" WHERE order_id=$1 ORDER BY created_at DESC", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, order_id, method, status, amount, currency,
	       COALESCE(provider,''), COALESCE(transaction_id,''),
	       COALESCE(phone_number,''), COALESCE(payer_email,''),
	       created_at, updated_at
	FROM payments`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanPayment(row rowScanner) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.Status, &p.Amount, &p.Currency,
		&p.Provider, &p.TransactionID, &p.PhoneNumber, &p.PayerEmail,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
