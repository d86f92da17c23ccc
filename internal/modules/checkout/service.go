package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelmarket/marketplace-backend/internal/modules/catalog"
	"github.com/sahelmarket/marketplace-backend/internal/modules/currency"
	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
	"github.com/sahelmarket/marketplace-backend/internal/modules/payment"
	"github.com/sahelmarket/marketplace-backend/internal/modules/profile"
)

// ── collaborators ─────────────────────────────────────────────────────────────

type ProductSource interface {
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error)
}

type ProfileSource interface {
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
}

type CapacityChecker interface {
	CheckDeliveryCapacity(ctx context.Context, delivererID string, activeDeliveries int) error
}

type RateSource interface {
	Rate(ctx context.Context, code string) (decimal.Decimal, error)
}

type OrderStore interface {
	PlaceOrders(ctx context.Context, orders []*order.Order) error
	FindCheckout(ctx context.Context, clientID, key string) ([]*order.Order, error)
	CountActiveDeliveries(ctx context.Context, delivererID string) (int, error)
}

type PaymentRecorder interface {
	RecordPending(ctx context.Context, orders []*order.Order, mm *payment.MobileMoneyDetails) ([]*payment.Payment, error)
}

type Notifier interface {
	OrdersPlaced(ctx context.Context, clientEmail string, orders []*order.Order)
}

// Deps groups the services a checkout touches.
type Deps struct {
	Products ProductSource
	Profiles ProfileSource
	Capacity CapacityChecker
	Rates    RateSource
	Orders   OrderStore
	Payments PaymentRecorder
	Notifier Notifier
}

// Options carries the platform fee settings.
type Options struct {
	ShippingFee float64 // XOF
	FeePolicy   FeePolicy
}

const notifyTimeout = 10 * time.Second

// Service turns a cart into one order per seller.
type Service interface {
	// Checkout validates the cart, places the orders atomically and records
	// pending payments for cash on delivery and mobile money. A non-empty
	// key makes the call idempotent per client.
	Checkout(ctx context.Context, caller Caller, key string, req Request) (*Result, error)
}

type service struct {
	deps Deps
	opts Options
}

func NewService(deps Deps, opts Options) Service {
	return &service{deps: deps, opts: opts}
}

func (s *service) Checkout(ctx context.Context, caller Caller, key string, req Request) (*Result, error) {
	key = strings.TrimSpace(key)
	if key != "" {
		existing, err := s.deps.Orders.FindCheckout(ctx, caller.ID, key)
		if err != nil {
			return nil, fmt.Errorf("lookup checkout: %w", err)
		}
		if len(existing) > 0 {
			res := summarize(existing)
			res.Replayed = true
			return res, nil
		}
	}

	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	settlement, err := settlementCurrency(req)
	if err != nil {
		return nil, err
	}
	clientID, err := uuid.Parse(caller.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}

	lines, err := s.resolveLines(ctx, clientID, req.Items)
	if err != nil {
		return nil, err
	}

	var delivererID *uuid.UUID
	delivererFee := decimal.Zero
	if req.DelivererID != "" {
		d, err := s.resolveDeliverer(ctx, req.DelivererID)
		if err != nil {
			return nil, err
		}
		delivererID = &d.ID
		delivererFee = decimal.NewFromFloat(d.DeliveryFee)
	}

	rate, err := s.deps.Rates.Rate(ctx, settlement)
	if err != nil {
		return nil, err
	}

	groups := Split(lines, decimal.NewFromFloat(s.opts.ShippingFee), delivererFee, s.opts.FeePolicy)
	checkoutID := uuid.New()
	orders := make([]*order.Order, 0, len(groups))
	for _, g := range groups {
		orders = append(orders, buildOrder(g, req, clientID, checkoutID, key, delivererID, settlement, rate))
	}

	if err := s.deps.Orders.PlaceOrders(ctx, orders); err != nil {
		return nil, err
	}

	if req.PaymentMethod != order.MethodPayPal {
		var mm *payment.MobileMoneyDetails
		if req.PaymentMethod == order.MethodMobileMoney {
			mm = req.MobileMoney
		}
		if _, err := s.deps.Payments.RecordPending(ctx, orders, mm); err != nil {
			log.Printf("checkout %s: %v", checkoutID, err)
		}
	}

	s.notify(caller.Email, orders)
	return summarize(orders), nil
}

// ── steps ─────────────────────────────────────────────────────────────────────

func validateRequest(req *Request) error {
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	req.PaymentMethod = order.PaymentMethod(strings.ToLower(strings.TrimSpace(string(req.PaymentMethod))))
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("invalid payment_method: %q", req.PaymentMethod)
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return fmt.Errorf("delivery_address is required")
	}
	if strings.TrimSpace(req.DeliveryPhone) == "" {
		return fmt.Errorf("delivery_phone is required")
	}
	if req.PaymentMethod == order.MethodMobileMoney {
		return payment.ValidateMobileMoney(req.MobileMoney)
	}
	return nil
}

// settlementCurrency is USD for PayPal and the display currency otherwise.
func settlementCurrency(req Request) (string, error) {
	if req.PaymentMethod == order.MethodPayPal {
		return "USD", nil
	}
	return currency.Normalize(req.Currency)
}

// resolveLines merges duplicate cart lines and checks every product against
// the catalog.
func (s *service) resolveLines(ctx context.Context, clientID uuid.UUID, items []CartItem) ([]Line, error) {
	var ids []uuid.UUID
	qty := make(map[uuid.UUID]int)
	for _, it := range items {
		id, err := uuid.Parse(strings.TrimSpace(it.ProductID))
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %q", it.ProductID)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for product %s", it.Quantity, id)
		}
		if _, seen := qty[id]; !seen {
			ids = append(ids, id)
		}
		qty[id] += it.Quantity
	}

	products, err := s.deps.Products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]Line, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !p.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, id)
		}
		if p.SellerID == clientID {
			return nil, fmt.Errorf("%w: %s", ErrOwnProduct, p.Name)
		}
		if p.Stock < qty[id] {
			return nil, fmt.Errorf("%w for %s (available %d, requested %d)",
				order.ErrInsufficientStock, p.Name, p.Stock, qty[id])
		}
		lines = append(lines, Line{Product: p, Quantity: qty[id]})
	}
	return lines, nil
}

func (s *service) resolveDeliverer(ctx context.Context, id string) (*profile.Profile, error) {
	d, err := s.deps.Profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeliverer, err)
	}
	if d.Role != profile.RoleDeliverer {
		return nil, fmt.Errorf("%w: %s is not a deliverer", ErrInvalidDeliverer, id)
	}
	if !d.IsAvailable {
		return nil, fmt.Errorf("%w: %s is not available", ErrInvalidDeliverer, d.FullName)
	}
	active, err := s.deps.Orders.CountActiveDeliveries(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Capacity.CheckDeliveryCapacity(ctx, id, active); err != nil {
		return nil, err
	}
	return d, nil
}

func buildOrder(g *SellerGroup, req Request, clientID, checkoutID uuid.UUID, key string,
	delivererID *uuid.UUID, code string, rate decimal.Decimal) *order.Order {

	subtotal := currency.FromBase(g.Subtotal, rate, code)
	shipping := currency.FromBase(g.ShippingFee, rate, code)
	delivery := currency.FromBase(g.DeliveryFee, rate, code)

	o := &order.Order{
		ID:              uuid.New(),
		CheckoutID:      checkoutID,
		CheckoutKey:     key,
		ClientID:        clientID,
		SellerID:        g.SellerID,
		DelivererID:     delivererID,
		Status:          order.StatusPending,
		PaymentStatus:   order.PaymentPending,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        subtotal.InexactFloat64(),
		ShippingFee:     shipping.InexactFloat64(),
		DeliveryFee:     delivery.InexactFloat64(),
		Total:           subtotal.Add(shipping).Add(delivery).InexactFloat64(),
		Currency:        code,
		ExchangeRate:    rate.InexactFloat64(),
		TotalXOF:        g.Total().InexactFloat64(),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		DeliveryPhone:   strings.TrimSpace(req.DeliveryPhone),
		DeliveryNotes:   strings.TrimSpace(req.DeliveryNotes),
	}
	for _, l := range g.Lines {
		o.Items = append(o.Items, &order.OrderItem{
			ID:          uuid.New(),
			OrderID:     o.ID,
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.Price,
			LineTotal:   l.LineTotal().InexactFloat64(),
		})
	}
	return o
}

// notify runs detached from the request; it is never retried.
func (s *service) notify(email string, orders []*order.Order) {
	if s.deps.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.deps.Notifier.OrdersPlaced(ctx, email, orders)
	}()
}

func summarize(orders []*order.Order) *Result {
	res := &Result{Orders: orders}
	total, totalXOF := decimal.Zero, decimal.Zero
	for _, o := range orders {
		res.CheckoutID = o.CheckoutID
		res.Currency = o.Currency
		total = total.Add(decimal.NewFromFloat(o.Total))
		totalXOF = totalXOF.Add(decimal.NewFromFloat(o.TotalXOF))
	}
	res.Total = total.Round(currency.Scale(res.Currency)).InexactFloat64()
	res.TotalXOF = totalXOF.InexactFloat64()
	return res
}
