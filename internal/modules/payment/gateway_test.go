package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveToken(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()
	user, pass, ok := r.BasicAuth()
	if !ok || user != "client-id" || pass != "client-secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
}

// fakePayPal serves the OAuth2 token endpoint and the Orders v2 calls.
func fakePayPal(t *testing.T, captureStatus int, captureBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		var body ppCreateOrder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body.Intent)
		require.Len(t, body.PurchaseUnits, 1)
		assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)
		assert.Equal(t, "25.50", body.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "mkt-ref", body.PurchaseUnits[0].CustomID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"PP-ORDER-1","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-ORDER-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"PP-ORDER-1","status":"APPROVED",
			"purchase_units":[{"custom_id":"mkt-ref","amount":{"currency_code":"USD","value":"25.50"}}]}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "capture-PP-ORDER-1", r.Header.Get("PayPal-Request-Id"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(captureStatus)
		w.Write([]byte(captureBody))
	})
	return httptest.NewServer(mux)
}

const completedCapture = `{
  "id": "PP-ORDER-1",
  "status": "COMPLETED",
  "payer": {"email_address": "buyer@example.com"},
  "purchase_units": [{"payments": {"captures": [{
    "id": "CAP-9", "status": "COMPLETED", "custom_id": "mkt-ref",
    "amount": {"currency_code": "USD", "value": "25.50"}
  }]}}]
}`

func TestPayPalGatewayCreateLookupAndCapture(t *testing.T) {
	srv := fakePayPal(t, http.StatusCreated, completedCapture)
	defer srv.Close()

	gw := NewPayPalGateway("client-id", "client-secret", srv.URL)

	id, err := gw.CreateOrder(context.Background(), 25.5, "USD", "mkt-ref")
	require.NoError(t, err)
	assert.Equal(t, "PP-ORDER-1", id)

	details, err := gw.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "mkt-ref", details.CustomID)
	assert.Equal(t, "USD", details.Currency)
	assert.True(t, details.Amount.Equal(decimal.RequireFromString("25.5")))

	res, err := gw.CaptureOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", res.Status)
	assert.Equal(t, "CAP-9", res.CaptureID)
	assert.Equal(t, "buyer@example.com", res.PayerEmail)
	assert.Equal(t, "mkt-ref", res.CustomID)
	assert.True(t, res.Amount.Equal(decimal.RequireFromString("25.50")))
}

func TestPayPalGatewayCaptureError(t *testing.T) {
	srv := fakePayPal(t, http.StatusUnprocessableEntity,
		`{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed.","details":[{"issue":"INSTRUMENT_DECLINED"}]}`)
	defer srv.Close()

	gw := NewPayPalGateway("client-id", "client-secret", srv.URL)
	_, err := gw.CaptureOrder(context.Background(), "PP-ORDER-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSTRUMENT_DECLINED")
	assert.Contains(t, err.Error(), "422")
}

func TestPayPalGatewayEscapesOrderID(t *testing.T) {
	var seenPath, seenQuery, seenURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			serveToken(t, w, r)
			return
		}
		seenPath, seenQuery, seenURI = r.URL.Path, r.URL.RawQuery, r.RequestURI
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"X","status":"DECLINED"}`))
	}))
	defer srv.Close()

	gw := NewPayPalGateway("client-id", "client-secret", srv.URL)
	_, err := gw.CaptureOrder(context.Background(), "X/../../../v1/payments/payouts?x=")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(seenPath, "/v2/checkout/orders/"))
	assert.True(t, strings.HasSuffix(seenPath, "/capture"))
	assert.Empty(t, seenQuery)
	assert.Contains(t, seenURI, "%2F")
}

func TestPayPalGatewayWithoutCredentials(t *testing.T) {
	gw := NewPayPalGateway("", "", "http://127.0.0.1:0")
	id, secret := gw.Credentials()
	assert.False(t, id)
	assert.False(t, secret)

	_, err := gw.CreateOrder(context.Background(), 10, "USD", "mkt-ref")
	assert.Error(t, err)
}
