package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelmarket/marketplace-backend/internal/modules/currency"
	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
)

// OrderStore is the slice of the order service payments reconcile against.
type OrderStore interface {
	GetOrder(ctx context.Context, viewer order.Viewer, id string) (*order.Order, error)
	GetOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]*order.Order, error)
	MarkPaid(ctx context.Context, ids []uuid.UUID) error
	MarkPaymentFailed(ctx context.Context, ids []uuid.UUID) error
}

// Service defines the payment business logic.
type Service interface {
	// RecordPending inserts one pending row per order placed with cash on
	// delivery or mobile money. mm is nil for cash on delivery.
	RecordPending(ctx context.Context, orders []*order.Order, mm *MobileMoneyDetails) ([]*Payment, error)

	ConfigStatus() ConfigStatus
	CreatePayPalOrder(ctx context.Context, clientID string, req CreatePayPalOrderRequest) (string, error)
	// CapturePayPal captures an approved PayPal order and reconciles the
	// marketplace orders it pays for.
	CapturePayPal(ctx context.Context, clientID string, req CapturePayPalOrderRequest) (*CaptureResponse, error)

	ListByOrder(ctx context.Context, viewer order.Viewer, orderID string) ([]*Payment, error)
	ConfirmPayment(ctx context.Context, id string) (*Payment, error)
	RejectPayment(ctx context.Context, id string) (*Payment, error)
}

type service struct {
	repo    Repository
	orders  OrderStore
	gateway PayPalGateway
}

// NewService creates a new payment service.
func NewService(repo Repository, orders OrderStore, gateway PayPalGateway) Service {
	return &service{repo: repo, orders: orders, gateway: gateway}
}

// ValidateMobileMoney checks the transfer details a client declares at checkout.
func ValidateMobileMoney(d *MobileMoneyDetails) error {
	if d == nil {
		return fmt.Errorf("mobile money details are required")
	}
	d.Provider = strings.ToLower(strings.TrimSpace(d.Provider))
	if !mobileMoneyProviders[d.Provider] {
		return fmt.Errorf("invalid mobile money provider: %q", d.Provider)
	}
	if strings.TrimSpace(d.PhoneNumber) == "" {
		return fmt.Errorf("phone_number is required for mobile money")
	}
	if strings.TrimSpace(d.TransactionID) == "" {
		return fmt.Errorf("transaction_id is required for mobile money")
	}
	return nil
}

func (s *service) RecordPending(ctx context.Context, orders []*order.Order, mm *MobileMoneyDetails) ([]*Payment, error) {
	payments := make([]*Payment, 0, len(orders))
	for _, o := range orders {
		p := &Payment{
			OrderID:  o.ID,
			Method:   o.PaymentMethod,
			Status:   StatusPending,
			Amount:   o.Total,
			Currency: o.Currency,
		}
		if mm != nil {
			p.Provider = mm.Provider
			p.PhoneNumber = mm.PhoneNumber
			p.TransactionID = mm.TransactionID
		}
		payments = append(payments, p)
	}
	if err := s.repo.CreatePayments(ctx, payments); err != nil {
		return nil, fmt.Errorf("record pending payments: %w", err)
	}
	return payments, nil
}

func (s *service) ConfigStatus() ConfigStatus {
	id, secret := s.gateway.Credentials()
	st := ConfigStatus{ClientID: id, ClientSecret: secret}
	if id && secret {
		st.Status, st.Message = "ok", "PayPal configuration loaded"
	} else {
		st.Status, st.Message = "error", "PayPal credentials are missing"
	}
	return st
}

func (s *service) CreatePayPalOrder(ctx context.Context, clientID string, req CreatePayPalOrderRequest) (string, error) {
	if req.Amount <= 0 {
		return "", fmt.Errorf("amount must be greater than 0")
	}
	code := "USD"
	if req.Currency != "" {
		var err error
		if code, err = currency.Normalize(req.Currency); err != nil {
			return "", err
		}
	}

	orders, ids, err := s.loadPayPalOrders(ctx, clientID, req.OrderIDs)
	if err != nil {
		return "", err
	}
	for _, o := range orders {
		if o.PaymentStatus == order.PaymentCompleted {
			return "", fmt.Errorf("order %s is already paid", o.ID)
		}
	}
	total, settled, err := ordersTotal(orders)
	if err != nil {
		return "", err
	}
	if settled != code {
		return "", fmt.Errorf("invalid currency %s: orders are settled in %s", code, settled)
	}
	if !total.Equal(decimal.NewFromFloat(req.Amount).Round(currency.Scale(code))) {
		return "", fmt.Errorf("invalid amount: orders total %s %s", total.StringFixed(currency.Scale(code)), code)
	}
	return s.gateway.CreateOrder(ctx, req.Amount, code, orderSetReference(ids))
}

func (s *service) CapturePayPal(ctx context.Context, clientID string, req CapturePayPalOrderRequest) (*CaptureResponse, error) {
	ppID := strings.TrimSpace(req.PayPalOrderID)
	if ppID == "" {
		return nil, fmt.Errorf("orderId is required")
	}
	if !paypalOrderIDPattern.MatchString(ppID) {
		return nil, fmt.Errorf("invalid orderId: %q", ppID)
	}
	orders, ids, err := s.loadPayPalOrders(ctx, clientID, req.OrderIDs)
	if err != nil {
		return nil, err
	}
	resp := &CaptureResponse{OrderIDs: req.OrderIDs}

	paid := 0
	for _, o := range orders {
		if o.PaymentStatus == order.PaymentCompleted {
			paid++
		}
	}
	switch {
	case paid == len(orders):
		resp.Status = "COMPLETED"
		return resp, nil
	case paid > 0:
		return nil, fmt.Errorf("invalid orderIds: %d of %d orders are already paid", paid, len(orders))
	}

	total, code, err := ordersTotal(orders)
	if err != nil {
		return nil, err
	}
	ref := orderSetReference(ids)

	// Nothing is captured unless PayPal's order was opened for exactly these
	// orders and amount.
	details, err := s.gateway.GetOrder(ctx, ppID)
	if err != nil {
		return nil, fmt.Errorf("lookup paypal order %s: %w", ppID, err)
	}
	if err := matchOrderSet(details.CustomID, details.Amount, details.Currency, ref, total, code); err != nil {
		return nil, err
	}

	res, err := s.gateway.CaptureOrder(ctx, ppID)
	if err != nil || res.Status != "COMPLETED" {
		if ferr := s.orders.MarkPaymentFailed(ctx, ids); ferr != nil {
			log.Printf("paypal %s: mark orders failed: %v", ppID, ferr)
		}
		if err == nil {
			err = fmt.Errorf("status %s", res.Status)
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if err := matchOrderSet(res.CustomID, res.Amount, res.Currency, ref, total, code); err != nil {
		log.Printf("paypal %s: capture %s does not match orders %v: %v", ppID, res.CaptureID, ids, err)
		return nil, err
	}

	if err := s.orders.MarkPaid(ctx, ids); err != nil {
		return nil, fmt.Errorf("mark orders paid: %w", err)
	}

	payments := make([]*Payment, 0, len(orders))
	for _, o := range orders {
		payments = append(payments, &Payment{
			OrderID:       o.ID,
			Method:        order.MethodPayPal,
			Status:        StatusCompleted,
			Amount:        o.Total,
			Currency:      o.Currency,
			Provider:      ProviderPayPal,
			TransactionID: res.CaptureID,
			PayerEmail:    res.PayerEmail,
		})
	}
	// The money is captured and the orders are confirmed; a failed insert
	// here is only logged.
	if err := s.repo.CreatePayments(ctx, payments); err != nil {
		log.Printf("paypal %s: insert payment rows: %v", ppID, err)
	}

	resp.Status = res.Status
	resp.CaptureID = res.CaptureID
	return resp, nil
}

func (s *service) ListByOrder(ctx context.Context, viewer order.Viewer, orderID string) ([]*Payment, error) {
	if _, err := s.orders.GetOrder(ctx, viewer, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) ConfirmPayment(ctx context.Context, id string) (*Payment, error) {
	p, err := s.pendingManual(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCompleted); err != nil {
		return nil, err
	}
	if err := s.orders.MarkPaid(ctx, []uuid.UUID{p.OrderID}); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}
	p.Status = StatusCompleted
	return p, nil
}

func (s *service) RejectPayment(ctx context.Context, id string) (*Payment, error) {
	p, err := s.pendingManual(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusFailed); err != nil {
		return nil, err
	}
	if err := s.orders.MarkPaymentFailed(ctx, []uuid.UUID{p.OrderID}); err != nil {
		return nil, fmt.Errorf("mark order failed: %w", err)
	}
	p.Status = StatusFailed
	return p, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// pendingManual loads a payment an admin may settle by hand.
func (s *service) pendingManual(ctx context.Context, id string) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Method == order.MethodPayPal {
		return nil, fmt.Errorf("invalid method: paypal payments are settled by capture")
	}
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}
	return p, nil
}

// loadPayPalOrders resolves the caller's PayPal orders, ignoring repeated ids.
func (s *service) loadPayPalOrders(ctx context.Context, clientID string, raw []string) ([]*order.Order, []uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("orderIds are required")
	}
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid order id: %q", r)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	orders, err := s.orders.GetOrdersByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(orders) != len(ids) {
		return nil, nil, order.ErrNotFound
	}
	for _, o := range orders {
		if o.ClientID.String() != clientID {
			return nil, nil, order.ErrForbidden
		}
		if o.PaymentMethod != order.MethodPayPal {
			return nil, nil, fmt.Errorf("invalid method: order %s is not paid with paypal", o.ID)
		}
		if o.Status == order.StatusCancelled {
			return nil, nil, fmt.Errorf("invalid order state: order %s is cancelled", o.ID)
		}
	}
	return orders, ids, nil
}

// ordersTotal sums the orders in their common settlement currency.
func ordersTotal(orders []*order.Order) (decimal.Decimal, string, error) {
	total := decimal.Zero
	code := orders[0].Currency
	for _, o := range orders {
		if o.Currency != code {
			return decimal.Zero, "", fmt.Errorf("invalid orderIds: orders mix %s and %s", code, o.Currency)
		}
		total = total.Add(decimal.NewFromFloat(o.Total))
	}
	return total.Round(currency.Scale(code)), code, nil
}

// PayPal order ids are short upper-case alphanumerics.
var paypalOrderIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// orderSetReference identifies a set of orders independently of their order.
// It is sent as the PayPal custom_id, which holds at most 127 characters.
func orderSetReference(ids []uuid.UUID) string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	sort.Strings(keys)
	sum := sha256.Sum256([]byte(strings.Join(keys, ",")))
	return "mkt-" + hex.EncodeToString(sum[:])
}

func matchOrderSet(customID string, amount decimal.Decimal, code, wantRef string, wantTotal decimal.Decimal, wantCode string) error {
	switch {
	case customID != wantRef:
		return fmt.Errorf("%w: reference differs", ErrPayPalMismatch)
	case !strings.EqualFold(code, wantCode):
		return fmt.Errorf("%w: currency %s, expected %s", ErrPayPalMismatch, code, wantCode)
	case !amount.Round(currency.Scale(wantCode)).Equal(wantTotal):
		return fmt.Errorf("%w: amount %s, expected %s", ErrPayPalMismatch, amount, wantTotal)
	}
	return nil
}
