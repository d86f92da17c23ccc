package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role is the marketplace role of a profile.
type Role string

const (
	RoleClient    Role = "client"
	RoleSeller    Role = "seller"
	RoleDeliverer Role = "deliverer"
	RoleAdmin     Role = "admin"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the marketplace-side record of an auth-provider user.
// DeliveryFee is only meaningful for deliverers and is expressed in XOF.
type Profile struct {
	ID                 uuid.UUID  `json:"id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Role               Role       `json:"role"`
	Badge              string     `json:"badge,omitempty"`
	SubscriptionPlanID *uuid.UUID `json:"subscription_plan_id,omitempty"`
	DeliveryFee        float64    `json:"delivery_fee"`
	IsAvailable        bool       `json:"is_available"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
