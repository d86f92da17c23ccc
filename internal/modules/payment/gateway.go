package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sahelmarket/marketplace-backend/internal/modules/currency"
)

// PayPalGateway is the subset of the PayPal Orders v2 API the checkout uses.
type PayPalGateway interface {
	// Credentials reports which credentials are configured.
	Credentials() (clientID, clientSecret bool)
	// CreateOrder opens a PayPal order whose custom_id is reference.
	CreateOrder(ctx context.Context, amount float64, currencyCode, reference string) (string, error)
	GetOrder(ctx context.Context, paypalOrderID string) (*OrderDetails, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*CaptureResult, error)
}

// OrderDetails is what PayPal holds for an order before capture.
type OrderDetails struct {
	ID       string
	Status   string
	CustomID string
	Amount   decimal.Decimal
	Currency string
}

// CaptureResult is the normalised answer of a capture call.
type CaptureResult struct {
	OrderID    string
	Status     string // COMPLETED on success
	CaptureID  string
	PayerEmail string
	CustomID   string
	Amount     decimal.Decimal
	Currency   string
}

type paypalGateway struct {
	clientID     string
	clientSecret string
	baseURL      string
	client       *http.Client
}

// NewPayPalGateway authenticates with OAuth2 client credentials against
// baseURL (sandbox or live). Tokens are cached and refreshed by oauth2.
func NewPayPalGateway(clientID, clientSecret, baseURL string) PayPalGateway {
	creds := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return &paypalGateway{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &oauth2.Transport{
				Source: creds.TokenSource(context.Background()),
				Base:   http.DefaultTransport,
			},
		},
	}
}

func (g *paypalGateway) Credentials() (bool, bool) {
	return g.clientID != "", g.clientSecret != ""
}

type ppAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type ppPurchaseUnit struct {
	Amount      ppAmount `json:"amount"`
	CustomID    string   `json:"custom_id,omitempty"`
	Description string   `json:"description,omitempty"`
}

type ppCreateOrder struct {
	Intent        string           `json:"intent"`
	PurchaseUnits []ppPurchaseUnit `json:"purchase_units"`
}

type ppCapture struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	CustomID string   `json:"custom_id"`
	Amount   ppAmount `json:"amount"`
}

type ppOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		CustomID string   `json:"custom_id"`
		Amount   ppAmount `json:"amount"`
		Payments struct {
			Captures []ppCapture `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type ppError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (g *paypalGateway) CreateOrder(ctx context.Context, amount float64, currencyCode, reference string) (string, error) {
	if g.clientID == "" || g.clientSecret == "" {
		return "", fmt.Errorf("paypal credentials are not configured")
	}
	body := ppCreateOrder{
		Intent: "CAPTURE",
		PurchaseUnits: []ppPurchaseUnit{{
			Amount: ppAmount{
				CurrencyCode: currencyCode,
				Value:        decimal.NewFromFloat(amount).StringFixed(currency.Scale(currencyCode)),
			},
			CustomID:    reference,
			Description: "Marketplace checkout",
		}},
	}
	var out ppOrder
	if err := g.do(ctx, http.MethodPost, "/v2/checkout/orders", "", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("paypal: create order returned no id")
	}
	return out.ID, nil
}

func (g *paypalGateway) GetOrder(ctx context.Context, paypalOrderID string) (*OrderDetails, error) {
	var out ppOrder
	if err := g.do(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(paypalOrderID), "", nil, &out); err != nil {
		return nil, err
	}
	if len(out.PurchaseUnits) != 1 {
		return nil, fmt.Errorf("paypal: order %s has %d purchase units", out.ID, len(out.PurchaseUnits))
	}
	pu := out.PurchaseUnits[0]
	amount, err := decimal.NewFromString(pu.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("paypal: order %s amount %q: %w", out.ID, pu.Amount.Value, err)
	}
	return &OrderDetails{
		ID:       out.ID,
		Status:   out.Status,
		CustomID: pu.CustomID,
		Amount:   amount,
		Currency: pu.Amount.CurrencyCode,
	}, nil
}

func (g *paypalGateway) CaptureOrder(ctx context.Context, paypalOrderID string) (*CaptureResult, error) {
	var out ppOrder
	path := "/v2/checkout/orders/" + url.PathEscape(paypalOrderID) + "/capture"
	if err := g.do(ctx, http.MethodPost, path, "capture-"+paypalOrderID, struct{}{}, &out); err != nil {
		return nil, err
	}
	res := &CaptureResult{OrderID: out.ID, Status: out.Status, PayerEmail: out.Payer.EmailAddress}
	var captures []ppCapture
	for _, pu := range out.PurchaseUnits {
		if res.CustomID == "" {
			res.CustomID = pu.CustomID
		}
		captures = append(captures, pu.Payments.Captures...)
	}
	if len(captures) != 1 {
		if res.Status == "COMPLETED" {
			res.Status = fmt.Sprintf("UNEXPECTED_CAPTURES_%d", len(captures))
		}
		return res, nil
	}
	c := captures[0]
	res.CaptureID = c.ID
	if c.Status != "COMPLETED" {
		res.Status = c.Status
	}
	if c.CustomID != "" {
		res.CustomID = c.CustomID
	}
	amount, err := decimal.NewFromString(c.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("paypal: capture %s amount %q: %w", c.ID, c.Amount.Value, err)
	}
	res.Amount, res.Currency = amount, c.Amount.CurrencyCode
	return res, nil
}

func (g *paypalGateway) do(ctx context.Context, method, path, requestID string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("paypal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var pe ppError
		_ = json.NewDecoder(resp.Body).Decode(&pe)
		msg := pe.Message
		if len(pe.Details) > 0 && pe.Details[0].Issue != "" {
			msg = pe.Details[0].Issue
		}
		return fmt.Errorf("paypal: %s: %s (HTTP %d)", pe.Name, msg, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
