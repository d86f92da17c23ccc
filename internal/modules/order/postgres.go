package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectOrder = `
	SELECT id, checkout_id, COALESCE(checkout_key, ''), client_id, seller_id, deliverer_id,
	       status, payment_status, payment_method, subtotal, shipping_fee, delivery_fee,
	       total, currency, exchange_rate, total_xof, delivery_address, delivery_phone,
	       delivery_notes, created_at, updated_at
	FROM orders`

// CreateOrders inserts all orders of a checkout inside a single transaction.
// A product whose stock cannot cover its quantity aborts the whole checkout.
func (r *postgresRepo) CreateOrders(ctx context.Context, orders []*Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, o := range orders {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders
			  (id, checkout_id, checkout_key, client_id, seller_id, deliverer_id, status,
			   payment_status, payment_method, subtotal, shipping_fee, delivery_fee, total,
			   currency, exchange_rate, total_xof, delivery_address, delivery_phone, delivery_notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			o.ID, o.CheckoutID, nilIfEmpty(o.CheckoutKey), o.ClientID, o.SellerID, o.DelivererID,
			o.Status, o.PaymentStatus, o.PaymentMethod, o.Subtotal, o.ShippingFee, o.DeliveryFee,
			o.Total, o.Currency, o.ExchangeRate, o.TotalXOF, o.DeliveryAddress, o.DeliveryPhone,
			o.DeliveryNotes)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range o.Items {
			res, err := tx.ExecContext(ctx, `
				UPDATE products SET stock = stock - $1, updated_at = NOW()
				WHERE id = $2 AND is_active AND stock >= $1`,
				item.Quantity, item.ProductID)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, item.ProductName)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items
				  (id, order_id, product_id, product_name, quantity, unit_price, line_total)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				item.ID, o.ID, item.ProductID, item.ProductName,
				item.Quantity, item.UnitPrice, item.LineTotal)
			if err != nil {
				return fmt.Errorf("insert order_item: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) ListByCheckoutKey(ctx context.Context, clientID, key string) ([]*Order, error) {
	orders, err := r.queryOrders(ctx,
		selectOrder+` WHERE client_id=$1 AND checkout_key=$2 ORDER BY created_at, id`, clientID, key)
	if err != nil {
		return nil, err
	}
	return orders, r.attachItems(ctx, orders)
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+" WHERE id=$1", uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) GetOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]*Order, error) {
	if len(ids) == 0 {
		return []*Order{}, nil
	}
	return r.queryOrders(ctx, selectOrder+" WHERE id = ANY($1::uuid[]) ORDER BY created_at, id", pq.Array(uuidStrings(ids)))
}

func (r *postgresRepo) ListOrders(ctx context.Context, f Filter) ([]*Order, error) {
	var where []string
	var args []interface{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.ClientID != "" {
		add("client_id=$%d", f.ClientID)
	}
	if f.SellerID != "" {
		add("seller_id=$%d", f.SellerID)
	}
	if f.DelivererID != "" {
		add("deliverer_id=$%d", f.DelivererID)
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}

	query := selectOrder
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	return r.queryOrders(ctx, query, args...)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CancelOrder(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status=$1, updated_at=NOW()
		WHERE id=$2 AND status IN ($3, $4)`,
		StatusCancelled, id, StatusPending, StatusConfirmed)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("only pending or confirmed orders can be cancelled")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products p SET stock = p.stock + oi.quantity, updated_at = NOW()
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.product_id = p.id`, id)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) MarkPaid(ctx context.Context, ids []uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status=$1,
		    status=CASE WHEN status=$2 THEN $3 ELSE status END,
		    updated_at=NOW()
		WHERE id = ANY($4::uuid[])`,
		PaymentCompleted, StatusPending, StatusConfirmed, pq.Array(uuidStrings(ids)))
	return err
}

func (r *postgresRepo) MarkPaymentFailed(ctx context.Context, ids []uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_status=$1, updated_at=NOW()
		WHERE id = ANY($2::uuid[]) AND payment_status <> $3`,
		PaymentFailed, pq.Array(uuidStrings(ids)), PaymentCompleted)
	return err
}

func (r *postgresRepo) CompleteCashOnDelivery(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET payment_status=$1, updated_at=NOW()
		WHERE id=$2 AND payment_method=$3`,
		PaymentCompleted, id, MethodCashOnDelivery); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE payments SET status='completed', updated_at=NOW()
		WHERE order_id=$1 AND method=$2 AND status='pending'`,
		id, MethodCashOnDelivery); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) CountActiveDeliveries(ctx context.Context, delivererID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE deliverer_id=$1 AND status IN ($2,$3,$4,$5)`,
		delivererID, StatusPending, StatusConfirmed, StatusProcessing, StatusShipped).Scan(&n)
	return n, err
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var delivererID uuid.NullUUID
	err := row.Scan(
		&o.ID, &o.CheckoutID, &o.CheckoutKey, &o.ClientID, &o.SellerID, &delivererID,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.Subtotal, &o.ShippingFee, &o.DeliveryFee,
		&o.Total, &o.Currency, &o.ExchangeRate, &o.TotalXOF, &o.DeliveryAddress, &o.DeliveryPhone,
		&o.DeliveryNotes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if delivererID.Valid {
		o.DelivererID = &delivererID.UUID
	}
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []*Order) error {
	for _, o := range orders {
		items, err := r.listItems(ctx, o.ID)
		if err != nil {
			return err
		}
		o.Items = items
	}
	return nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, line_total, created_at
		FROM order_items WHERE order_id=$1 ORDER BY created_at ASC, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OrderItem
	for rows.Next() {
		item := &OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.LineTotal, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
