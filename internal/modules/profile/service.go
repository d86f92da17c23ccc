package profile

import (
	"context"
	"fmt"
)

// Service defines the interface for profile-related business logic.
type Service interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	// RoleOf satisfies auth.RoleResolver.
	RoleOf(ctx context.Context, id string) (string, error)
	ListDeliverers(ctx context.Context, availableOnly bool) ([]*Profile, error)
}

type service struct {
	repo Repository
}

// NewService creates a new profile service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetProfileByID(ctx, id)
}

func (s *service) RoleOf(ctx context.Context, id string) (string, error) {
	p, err := s.repo.GetProfileByID(ctx, id)
	if err != nil {
		return "", err
	}
	switch p.Role {
	case RoleClient, RoleSeller, RoleDeliverer, RoleAdmin:
		return string(p.Role), nil
	}
	return "", fmt.Errorf("profile %s has unknown role %q", id, p.Role)
}

func (s *service) ListDeliverers(ctx context.Context, availableOnly bool) ([]*Profile, error) {
	return s.repo.ListByRole(ctx, RoleDeliverer, availableOnly)
}
