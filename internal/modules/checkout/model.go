package checkout

import (
	"errors"

	"github.com/google/uuid"

	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
	"github.com/sahelmarket/marketplace-backend/internal/modules/payment"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrOwnProduct         = errors.New("cannot buy your own product")
	ErrInvalidDeliverer   = errors.New("invalid deliverer")
)

// CartItem is one line of the client's cart.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Request is the payload of POST /api/v1/checkout.
type Request struct {
	Items         []CartItem          `json:"items"`
	PaymentMethod order.PaymentMethod `json:"payment_method"`
	// Currency is the display currency; PayPal always settles in USD.
	Currency        string `json:"currency,omitempty"`
	DelivererID     string `json:"deliverer_id,omitempty"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryPhone   string `json:"delivery_phone"`
	DeliveryNotes   string `json:"delivery_notes,omitempty"`

	MobileMoney *payment.MobileMoneyDetails `json:"mobile_money,omitempty"`
}

// Result describes the orders produced by a checkout. For PayPal the
// front-end creates the PayPal order for Total in Currency next.
type Result struct {
	CheckoutID uuid.UUID      `json:"checkout_id"`
	Orders     []*order.Order `json:"orders"`
	Currency   string         `json:"currency"`
	Total      float64        `json:"total"`
	TotalXOF   float64        `json:"total_xof"`
	// Replayed is set when the Idempotency-Key matched an earlier checkout.
	Replayed bool `json:"replayed"`
}

// Caller identifies the authenticated buyer.
type Caller struct {
	ID    string
	Email string
}
