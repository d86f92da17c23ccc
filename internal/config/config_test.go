package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("CHECKOUT_SHIPPING_FEE", "")
	t.Setenv("DELIVERER_FEE_POLICY", "")
	t.Setenv("PAYPAL_BASE_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, float64(1000), cfg.ShippingFee)
	assert.Equal(t, "first_order", cfg.DelivererFeePolicy)
	assert.Equal(t, "https://api-m.sandbox.paypal.com", cfg.PayPalBaseURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("CHECKOUT_SHIPPING_FEE", "2500")
	t.Setenv("DELIVERER_FEE_POLICY", "Proportional")
	t.Setenv("PAYPAL_BASE_URL", "https://api-m.paypal.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example, https://admin.example")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "abc")

	cfg := FromEnv()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, float64(2500), cfg.ShippingFee)
	assert.Equal(t, "proportional", cfg.DelivererFeePolicy)
	assert.Equal(t, "https://api-m.paypal.com", cfg.PayPalBaseURL)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestNegativeShippingFeeFallsBack(t *testing.T) {
	t.Setenv("CHECKOUT_SHIPPING_FEE", "-5")
	assert.Equal(t, float64(1000), FromEnv().ShippingFee)
}
