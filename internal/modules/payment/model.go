package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
)

var (
	ErrNotFound      = errors.New("payment not found")
	ErrCaptureFailed = errors.New("paypal capture failed")
	ErrNotPending    = errors.New("payment is not pending")
)

// ErrPayPalMismatch means a PayPal order was not opened for the orders it is
// being used to pay.
var ErrPayPalMismatch = errors.New("paypal order does not match these orders")

// Status represents the lifecycle of a payment row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Mobile-money operators accepted for manual transfers.
const (
	ProviderOrangeMoney = "orange_money"
	ProviderWave        = "wave"
	ProviderMTNMomo     = "mtn_momo"
	ProviderMoovMoney   = "moov_money"
	ProviderPayPal      = "paypal"
)

var mobileMoneyProviders = map[string]bool{
	ProviderOrangeMoney: true,
	ProviderWave:        true,
	ProviderMTNMomo:     true,
	ProviderMoovMoney:   true,
}

// Payment records money received (or expected) for one order.
type Payment struct {
	ID            uuid.UUID           `json:"id"`
	OrderID       uuid.UUID           `json:"order_id"`
	Method        order.PaymentMethod `json:"method"`
	Status        Status              `json:"status"`
	Amount        float64             `json:"amount"`
	Currency      string              `json:"currency"`
	Provider      string              `json:"provider,omitempty"`
	TransactionID string              `json:"transaction_id,omitempty"`
	PhoneNumber   string              `json:"phone_number,omitempty"`
	PayerEmail    string              `json:"payer_email,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ── Request/Response DTOs ─────────────────────────────────────────────────────

// MobileMoneyDetails is what the client declares after sending a transfer.
type MobileMoneyDetails struct {
	Provider      string `json:"provider"`
	PhoneNumber   string `json:"phone_number"`
	TransactionID string `json:"transaction_id"`
}

// CreatePayPalOrderRequest is the body of POST /api/paypal/create-order.
type CreatePayPalOrderRequest struct {
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
	OrderIDs []string `json:"orderIds"`
}

// CapturePayPalOrderRequest is the body of POST /api/paypal/capture-order.
type CapturePayPalOrderRequest struct {
	PayPalOrderID string   `json:"orderId"`
	OrderIDs      []string `json:"orderIds"`
}

// CaptureResponse reports the outcome of a capture to the front-end.
type CaptureResponse struct {
	Status    string   `json:"status"`
	CaptureID string   `json:"captureId,omitempty"`
	OrderIDs  []string `json:"orderIds"`
}

// ConfigStatus is the diagnostic body of GET /api/paypal/test.
type ConfigStatus struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ClientID     bool   `json:"clientId"`
	ClientSecret bool   `json:"clientSecret"`
}
