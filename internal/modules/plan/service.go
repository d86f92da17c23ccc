package plan

import (
	"context"
	"errors"
	"fmt"
)

// Service exposes plan listings and limit checks used by the catalog and checkout.
type Service interface {
	ListPlans(ctx context.Context, role string) ([]*SubscriptionPlan, error)
	// CheckProductLimit fails with ErrLimitReached when a seller already lists
	// as many products as the plan allows.
	CheckProductLimit(ctx context.Context, sellerID string, currentProducts int) error
	// CheckDeliveryCapacity fails with ErrLimitReached when a deliverer already
	// carries as many active deliveries as the plan allows.
	CheckDeliveryCapacity(ctx context.Context, delivererID string, activeDeliveries int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListPlans(ctx context.Context, role string) ([]*SubscriptionPlan, error) {
	return s.repo.ListPlans(ctx, role)
}

func (s *service) CheckProductLimit(ctx context.Context, sellerID string, currentProducts int) error {
	p, err := s.planFor(ctx, sellerID)
	if err != nil || p == nil {
		return err
	}
	if !allows(p.MaxProducts, currentProducts) {
		return fmt.Errorf("%w: plan %s allows %d products", ErrLimitReached, p.Name, p.MaxProducts)
	}
	return nil
}

func (s *service) CheckDeliveryCapacity(ctx context.Context, delivererID string, activeDeliveries int) error {
	p, err := s.planFor(ctx, delivererID)
	if err != nil || p == nil {
		return err
	}
	if !allows(p.MaxConcurrentDeliveries, activeDeliveries) {
		return fmt.Errorf("%w: plan %s allows %d concurrent deliveries", ErrLimitReached, p.Name, p.MaxConcurrentDeliveries)
	}
	return nil
}

// planFor returns nil without error for profiles on no plan, which are not capped.
func (s *service) planFor(ctx context.Context, profileID string) (*SubscriptionPlan, error) {
	p, err := s.repo.GetPlanForProfile(ctx, profileID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load plan for %s: %w", profileID, err)
	}
	if !p.IsActive {
		return nil, nil
	}
	return p, nil
}
