package profile

import "context"

// Repository defines the interface for profile data storage.
type Repository interface {
	GetProfileByID(ctx context.Context, id string) (*Profile, error)
	ListByRole(ctx context.Context, role Role, availableOnly bool) ([]*Profile, error)
}
