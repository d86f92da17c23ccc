package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("subscription plan not found")
	ErrLimitReached = errors.New("subscription plan limit reached")
)

// SubscriptionPlan caps what a seller or deliverer may do on the platform.
// A zero limit means unlimited.
type SubscriptionPlan struct {
	ID                      uuid.UUID `json:"id"`
	Name                    string    `json:"name"`
	Role                    string    `json:"role"`
	Price                   float64   `json:"price"`
	MaxProducts             int       `json:"max_products"`
	MaxAds                  int       `json:"max_ads"`
	MaxWalletBalance        float64   `json:"max_wallet_balance"`
	MaxConcurrentDeliveries int       `json:"max_concurrent_deliveries"`
	IsActive                bool      `json:"is_active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// allows reports whether count more items fit under limit.
func allows(limit, count int) bool {
	return limit <= 0 || count < limit
}
