package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository. stock tracks product quantities so
// cancellations can be checked.
type memRepo struct {
	orders     map[uuid.UUID]*Order
	stock      map[uuid.UUID]int
	cashPaidAt []string
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[uuid.UUID]*Order{}, stock: map[uuid.UUID]int{}}
}

func (m *memRepo) CreateOrders(_ context.Context, orders []*Order) error {
	for _, o := range orders {
		for _, it := range o.Items {
			if m.stock[it.ProductID] < it.Quantity {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, it.ProductName)
			}
		}
	}
	for _, o := range orders {
		for _, it := range o.Items {
			m.stock[it.ProductID] -= it.Quantity
		}
		m.orders[o.ID] = o
	}
	return nil
}

func (m *memRepo) ListByCheckoutKey(_ context.Context, clientID, key string) ([]*Order, error) {
	var out []*Order
	for _, o := range m.orders {
		if o.ClientID.String() == clientID && o.CheckoutKey == key {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) GetOrderByID(_ context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	o, ok := m.orders[uid]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) GetOrdersByIDs(_ context.Context, ids []uuid.UUID) ([]*Order, error) {
	var out []*Order
	for _, id := range ids {
		if o, ok := m.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) ListOrders(_ context.Context, f Filter) ([]*Order, error) {
	var out []*Order
	for _, o := range m.orders {
		if f.SellerID != "" && o.SellerID.String() != f.SellerID {
			continue
		}
		if f.ClientID != "" && o.ClientID.String() != f.ClientID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	m.orders[uuid.MustParse(id)].Status = status
	return nil
}

func (m *memRepo) CancelOrder(_ context.Context, id string) error {
	o := m.orders[uuid.MustParse(id)]
	o.Status = StatusCancelled
	for _, it := range o.Items {
		m.stock[it.ProductID] += it.Quantity
	}
	return nil
}

func (m *memRepo) MarkPaid(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		o := m.orders[id]
		o.PaymentStatus = PaymentCompleted
		if o.Status == StatusPending {
			o.Status = StatusConfirmed
		}
	}
	return nil
}

func (m *memRepo) MarkPaymentFailed(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if m.orders[id].PaymentStatus != PaymentCompleted {
			m.orders[id].PaymentStatus = PaymentFailed
		}
	}
	return nil
}

func (m *memRepo) CompleteCashOnDelivery(_ context.Context, id string) error {
	m.orders[uuid.MustParse(id)].PaymentStatus = PaymentCompleted
	m.cashPaidAt = append(m.cashPaidAt, id)
	return nil
}

func (m *memRepo) CountActiveDeliveries(_ context.Context, delivererID string) (int, error) {
	n := 0
	for _, o := range m.orders {
		if o.DelivererID != nil && o.DelivererID.String() == delivererID &&
			o.Status != StatusDelivered && o.Status != StatusCancelled {
			n++
		}
	}
	return n, nil
}

type fixture struct {
	repo      *memRepo
	svc       Service
	client    uuid.UUID
	seller    uuid.UUID
	deliverer uuid.UUID
	product   uuid.UUID
	order     *Order
}

func newFixture(t *testing.T, withDeliverer bool) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newMemRepo(),
		client:    uuid.New(),
		seller:    uuid.New(),
		deliverer: uuid.New(),
		product:   uuid.New(),
	}
	f.svc = NewService(f.repo)
	f.repo.stock[f.product] = 5
	f.order = &Order{
		ID:            uuid.New(),
		ClientID:      f.client,
		SellerID:      f.seller,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		PaymentMethod: MethodCashOnDelivery,
		Items:         []*OrderItem{{ID: uuid.New(), ProductID: f.product, ProductName: "Attiéké", Quantity: 2}},
	}
	if withDeliverer {
		f.order.DelivererID = &f.deliverer
	}
	require.NoError(t, f.svc.PlaceOrders(context.Background(), []*Order{f.order}))
	return f
}

func (f *fixture) as(id uuid.UUID, role string) Viewer { return Viewer{ID: id.String(), Role: role} }

func TestPlaceOrdersRejectsShortStock(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, 3, f.repo.stock[f.product])

	err := f.svc.PlaceOrders(context.Background(), []*Order{{
		ID:    uuid.New(),
		Items: []*OrderItem{{ProductID: f.product, ProductName: "Attiéké", Quantity: 4}},
	}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, f.repo.stock[f.product])

	assert.Error(t, f.svc.PlaceOrders(context.Background(), nil))
}

func TestSellerLifecycleWithDeliverer(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.order.ID.String()
	seller := f.as(f.seller, "seller")
	deliverer := f.as(f.deliverer, "deliverer")

	_, err := f.svc.UpdateStatus(ctx, deliverer, id, UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrForbidden)

	for _, next := range []string{"CONFIRMED", "processing"} {
		_, err := f.svc.UpdateStatus(ctx, seller, id, UpdateStatusRequest{Status: next})
		require.NoError(t, err)
	}
	_, err = f.svc.UpdateStatus(ctx, deliverer, id, UpdateStatusRequest{Status: "shipped"})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, seller, id, UpdateStatusRequest{Status: "delivered"})
	assert.ErrorIs(t, err, ErrForbidden)

	o, err := f.svc.UpdateStatus(ctx, deliverer, id, UpdateStatusRequest{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)
	assert.Equal(t, PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, []string{id}, f.repo.cashPaidAt)
}

func TestInvalidTransition(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.UpdateStatus(context.Background(), f.as(f.seller, "seller"), f.order.ID.String(),
		UpdateStatusRequest{Status: "delivered"})
	assert.ErrorContains(t, err, "cannot transition order from pending to delivered")
}

func TestSellerCancelRestocks(t *testing.T) {
	f := newFixture(t, false)
	o, err := f.svc.UpdateStatus(context.Background(), f.as(f.seller, "seller"), f.order.ID.String(),
		UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, 5, f.repo.stock[f.product])
}

func TestClientCancel(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.order.ID.String()

	assert.ErrorIs(t, f.svc.CancelOrder(ctx, f.as(uuid.New(), "client"), id), ErrForbidden)
	require.NoError(t, f.svc.CancelOrder(ctx, f.as(f.client, "client"), id))
	assert.Equal(t, 5, f.repo.stock[f.product])
	assert.ErrorContains(t, f.svc.CancelOrder(ctx, f.as(f.client, "client"), id), "only pending or confirmed")
}

func TestGetOrderAccess(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.order.ID.String()

	for _, v := range []Viewer{
		f.as(f.client, "client"), f.as(f.seller, "seller"),
		f.as(f.deliverer, "deliverer"), f.as(uuid.New(), "admin"),
	} {
		_, err := f.svc.GetOrder(ctx, v, id)
		assert.NoError(t, err, v.Role)
	}
	_, err := f.svc.GetOrder(ctx, f.as(uuid.New(), "seller"), id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.GetOrder(ctx, f.as(f.client, "client"), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPaidAndFailed(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	ids := []uuid.UUID{f.order.ID}

	require.NoError(t, f.svc.MarkPaymentFailed(ctx, ids))
	assert.Equal(t, PaymentFailed, f.repo.orders[f.order.ID].PaymentStatus)

	require.NoError(t, f.svc.MarkPaid(ctx, ids))
	assert.Equal(t, PaymentCompleted, f.repo.orders[f.order.ID].PaymentStatus)
	assert.Equal(t, StatusConfirmed, f.repo.orders[f.order.ID].Status)

	// A later failure never demotes a paid order.
	require.NoError(t, f.svc.MarkPaymentFailed(ctx, ids))
	assert.Equal(t, PaymentCompleted, f.repo.orders[f.order.ID].PaymentStatus)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusShipped, StatusDelivered))
	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
	assert.False(t, CanTransition(StatusProcessing, StatusCancelled))
}
