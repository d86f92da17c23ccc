package plan

import "context"

// Repository defines the interface for subscription plan storage.
type Repository interface {
	ListPlans(ctx context.Context, role string) ([]*SubscriptionPlan, error)
	// GetPlanForProfile returns the plan attached to a profile, or ErrNotFound
	// when the profile has none.
	GetPlanForProfile(ctx context.Context, profileID string) (*SubscriptionPlan, error)
}
