package order

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// Service defines the order management business logic shared by the seller,
// deliverer and client dashboards and by the checkout/payment flows.
type Service interface {
	// PlaceOrders persists the orders produced by one checkout atomically.
	PlaceOrders(ctx context.Context, orders []*Order) error
	// FindCheckout returns orders previously created by clientID with key, if any.
	FindCheckout(ctx context.Context, clientID, key string) ([]*Order, error)

	GetOrder(ctx context.Context, viewer Viewer, id string) (*Order, error)
	GetOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]*Order, error)
	ListOrders(ctx context.Context, f Filter) ([]*Order, error)

	// UpdateStatus advances an order along the fulfilment state machine.
	UpdateStatus(ctx context.Context, viewer Viewer, id string, req UpdateStatusRequest) (*Order, error)
	// CancelOrder cancels a pending or confirmed order and restocks its items.
	CancelOrder(ctx context.Context, viewer Viewer, id string) error

	MarkPaid(ctx context.Context, ids []uuid.UUID) error
	MarkPaymentFailed(ctx context.Context, ids []uuid.UUID) error

	CountActiveDeliveries(ctx context.Context, delivererID string) (int, error)
}

type service struct {
	repo Repository
}

// NewService creates a new order service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition returns true if the status transition is valid.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

func (s *service) PlaceOrders(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return fmt.Errorf("checkout must produce at least one order")
	}
	return s.repo.CreateOrders(ctx, orders)
}

func (s *service) FindCheckout(ctx context.Context, clientID, key string) ([]*Order, error) {
	if key == "" {
		return nil, nil
	}
	return s.repo.ListByCheckoutKey(ctx, clientID, key)
}

func (s *service) GetOrder(ctx context.Context, viewer Viewer, id string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(viewer, o) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) GetOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]*Order, error) {
	return s.repo.GetOrdersByIDs(ctx, ids)
}

func (s *service) ListOrders(ctx context.Context, f Filter) ([]*Order, error) {
	f.Status = Status(strings.ToLower(string(f.Status)))
	return s.repo.ListOrders(ctx, f)
}

func (s *service) UpdateStatus(ctx context.Context, viewer Viewer, id string, req UpdateStatusRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("cannot transition order from %s to %s", o.Status, next)
	}
	if !canMove(viewer, o, next) {
		return nil, ErrForbidden
	}

	if next == StatusCancelled {
		if err := s.repo.CancelOrder(ctx, id); err != nil {
			return nil, err
		}
	} else if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	o.Status = next

	if next == StatusDelivered && o.PaymentMethod == MethodCashOnDelivery && o.PaymentStatus == PaymentPending {
		if err := s.repo.CompleteCashOnDelivery(ctx, id); err != nil {
			log.Printf("order %s: record cash collection: %v", id, err)
		} else {
			o.PaymentStatus = PaymentCompleted
		}
	}
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, viewer Viewer, id string) error {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if viewer.Role != "admin" && o.ClientID.String() != viewer.ID {
		return ErrForbidden
	}
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return fmt.Errorf("only pending or confirmed orders can be cancelled (current: %s)", o.Status)
	}
	return s.repo.CancelOrder(ctx, id)
}

func (s *service) MarkPaid(ctx context.Context, ids []uuid.UUID) error {
	return s.repo.MarkPaid(ctx, ids)
}

func (s *service) MarkPaymentFailed(ctx context.Context, ids []uuid.UUID) error {
	return s.repo.MarkPaymentFailed(ctx, ids)
}

func (s *service) CountActiveDeliveries(ctx context.Context, delivererID string) (int, error) {
	return s.repo.CountActiveDeliveries(ctx, delivererID)
}

// ── access rules ──────────────────────────────────────────────────────────────

func canView(v Viewer, o *Order) bool {
	switch {
	case v.Role == "admin":
		return true
	case o.ClientID.String() == v.ID, o.SellerID.String() == v.ID:
		return true
	case o.DelivererID != nil && o.DelivererID.String() == v.ID:
		return true
	}
	return false
}

// canMove decides who may perform a transition. Sellers run their orders up
// to shipment; the assigned deliverer picks up and delivers. Without a
// deliverer the seller closes the order itself.
func canMove(v Viewer, o *Order, next Status) bool {
	if v.Role == "admin" {
		return true
	}
	isSeller := o.SellerID.String() == v.ID
	isDeliverer := o.DelivererID != nil && o.DelivererID.String() == v.ID

	switch next {
	case StatusConfirmed, StatusProcessing, StatusCancelled:
		return isSeller
	case StatusShipped:
		return isSeller || isDeliverer
	case StatusDelivered:
		return isDeliverer || (isSeller && o.DelivererID == nil)
	}
	return false
}
