package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// CreateOrders persists every order of a checkout, their items and the
	// matching stock decrements in one transaction.
	CreateOrders(ctx context.Context, orders []*Order) error

	// ListByCheckoutKey returns the orders a client already created with an idempotency key.
	ListByCheckoutKey(ctx context.Context, clientID, key string) ([]*Order, error)

	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]*Order, error)
	ListOrders(ctx context.Context, f Filter) ([]*Order, error)

	UpdateStatus(ctx context.Context, id string, status Status) error

	// CancelOrder marks the order cancelled and puts its items back in stock.
	CancelOrder(ctx context.Context, id string) error

	// MarkPaid sets payment_status=completed and confirms pending orders.
	MarkPaid(ctx context.Context, ids []uuid.UUID) error
	// MarkPaymentFailed sets payment_status=failed on orders not already paid.
	MarkPaymentFailed(ctx context.Context, ids []uuid.UUID) error
	// CompleteCashOnDelivery records the cash collected at delivery on the
	// order and its pending cash payment rows.
	CompleteCashOnDelivery(ctx context.Context, id string) error

	CountActiveDeliveries(ctx context.Context, delivererID string) (int, error)
}
