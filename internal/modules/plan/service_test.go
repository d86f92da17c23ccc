package plan

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	plans map[string]*SubscriptionPlan
}

func (f *fakeRepo) ListPlans(_ context.Context, role string) ([]*SubscriptionPlan, error) {
	var out []*SubscriptionPlan
	for _, p := range f.plans {
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetPlanForProfile(_ context.Context, id string) (*SubscriptionPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func TestCheckProductLimit(t *testing.T) {
	repo := &fakeRepo{plans: map[string]*SubscriptionPlan{
		"basic-seller": {ID: uuid.New(), Name: "Basic", Role: "seller", MaxProducts: 10, IsActive: true},
		"pro-seller":   {ID: uuid.New(), Name: "Pro", Role: "seller", MaxProducts: 0, IsActive: true},
		"old-seller":   {ID: uuid.New(), Name: "Legacy", Role: "seller", MaxProducts: 1, IsActive: false},
	}}
	svc := NewService(repo)
	ctx := context.Background()

	assert.NoError(t, svc.CheckProductLimit(ctx, "basic-seller", 9))
	assert.ErrorIs(t, svc.CheckProductLimit(ctx, "basic-seller", 10), ErrLimitReached)
	assert.NoError(t, svc.CheckProductLimit(ctx, "pro-seller", 5000))
	assert.NoError(t, svc.CheckProductLimit(ctx, "old-seller", 3))
	assert.NoError(t, svc.CheckProductLimit(ctx, "no-plan", 3))
}

func TestCheckDeliveryCapacity(t *testing.T) {
	repo := &fakeRepo{plans: map[string]*SubscriptionPlan{
		"moto": {Name: "Moto", Role: "deliverer", MaxConcurrentDeliveries: 2, IsActive: true},
	}}
	svc := NewService(repo)

	assert.NoError(t, svc.CheckDeliveryCapacity(context.Background(), "moto", 1))
	err := svc.CheckDeliveryCapacity(context.Background(), "moto", 2)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Contains(t, err.Error(), "Moto")
}
