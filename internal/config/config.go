package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the API process.
type Config struct {
	DatabaseURL    string
	Port           string
	AllowedOrigins []string
	JWTSecret      string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalBaseURL      string

	TelegramBotToken string
	TelegramChatID   string
	TelegramBaseURL  string

	PostmarkServerToken string
	EmailSender         string

	ShippingFee        float64 // XOF, split across the orders of one checkout
	DelivererFeePolicy string  // first_order | proportional
	RateLimitPerMinute int
}

const (
	defaultPort          = "8080"
	defaultPayPalBaseURL = "https://api-m.sandbox.paypal.com"
	defaultTelegramURL   = "https://api.telegram.org"
	defaultShippingFee   = 1000
	defaultRateLimit     = 60
)

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded (%v), using process environment", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	return &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Port:                getEnv("APP_PORT", defaultPort),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "*")),
		JWTSecret:           os.Getenv("SUPABASE_JWT_SECRET"),
		PayPalClientID:      os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret:  os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalBaseURL:       strings.TrimRight(getEnv("PAYPAL_BASE_URL", defaultPayPalBaseURL), "/"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:      os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramBaseURL:     strings.TrimRight(getEnv("TELEGRAM_BASE_URL", defaultTelegramURL), "/"),
		PostmarkServerToken: os.Getenv("POSTMARK_SERVER_TOKEN"),
		EmailSender:         os.Getenv("EMAIL_SENDER"),
		ShippingFee:         getFloat("CHECKOUT_SHIPPING_FEE", defaultShippingFee),
		DelivererFeePolicy:  strings.ToLower(getEnv("DELIVERER_FEE_POLICY", "first_order")),
		RateLimitPerMinute:  getInt("RATE_LIMIT_PER_MINUTE", defaultRateLimit),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("config: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
