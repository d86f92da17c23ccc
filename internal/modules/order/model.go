package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrForbidden         = errors.New("not allowed to act on this order")
)

// Status represents the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus represents where the money for an order stands.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethod is the path chosen at checkout.
type PaymentMethod string

const (
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	MethodMobileMoney    PaymentMethod = "mobile_money"
	MethodPayPal         PaymentMethod = "paypal"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCashOnDelivery, MethodMobileMoney, MethodPayPal:
		return true
	}
	return false
}

// Order is the share of one checkout that belongs to a single seller.
// Subtotal, fees and Total are in Currency; items and TotalXOF are in XOF.
// ExchangeRate is value_in_fcfa of Currency when the order was placed.
type Order struct {
	ID              uuid.UUID     `json:"id"`
	CheckoutID      uuid.UUID     `json:"checkout_id"`
	CheckoutKey     string        `json:"-"`
	ClientID        uuid.UUID     `json:"client_id"`
	SellerID        uuid.UUID     `json:"seller_id"`
	DelivererID     *uuid.UUID    `json:"deliverer_id,omitempty"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Subtotal        float64       `json:"subtotal"`
	ShippingFee     float64       `json:"shipping_fee"`
	DeliveryFee     float64       `json:"delivery_fee"`
	Total           float64       `json:"total"`
	Currency        string        `json:"currency"`
	ExchangeRate    float64       `json:"exchange_rate"`
	TotalXOF        float64       `json:"total_xof"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	DeliveryPhone   string        `json:"delivery_phone,omitempty"`
	DeliveryNotes   string        `json:"delivery_notes,omitempty"`
	Items           []*OrderItem  `json:"items,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// OrderItem is a single line of an order, priced in XOF at checkout time.
type OrderItem struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	LineTotal   float64   `json:"line_total"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter narrows order listings; empty fields are ignored.
type Filter struct {
	ClientID    string
	SellerID    string
	DelivererID string
	Status      Status
}

// Viewer is the authenticated caller acting on an order.
type Viewer struct {
	ID   string
	Role string
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
