package service

import (
	"context"
	"testing"

	"protonshop/internal/logger"
	"protonshop/internal/model"
	"protonshop/internal/repository/memory"
	"protonshop/internal/shop"
	"protonshop/internal/ws"
	"protonshop/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkout() CheckoutRequest {
	return CheckoutRequest{
		CustomerName:         " Ana Pérez ",
		CustomerPhone:        "3001234567",
		CustomerAddress:      "Calle 10 # 5-20",
		CustomerMunicipio:    "Medellín",
		CustomerDepartamento: "Antioquia",
	}
}

type orderFixture struct {
	store *memory.Store
	pub   *recorder
	carts *memCarts
	svc   OrderService
	a, b  model.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := memory.New()
	pub := &recorder{}
	f := &orderFixture{
		store: store,
		pub:   pub,
		carts: newMemCarts(),
		svc:   NewOrderService(store.Orders(), pub, logger.Discard()),
	}
	f.a = seedProduct(t, store, model.Product{Name: "Teclado", Price: 1000})
	f.b = seedProduct(t, store, model.Product{Name: "Mouse", Price: 2000, SalePrice: ptr(1500.0)})
	return f
}

func (f *orderFixture) place(t *testing.T) *model.Order {
	t.Helper()
	ctx := context.Background()
	cart, err := cartWith(ctx, f.carts, "c1", f.a, f.b)
	require.NoError(t, err)
	order, err := f.svc.PlaceOrder(ctx, checkout(), cart)
	require.NoError(t, err)
	return order
}

func TestPlaceOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	cart, err := cartWith(ctx, f.carts, "c1", f.a, f.b, f.b)
	require.NoError(t, err)

	order, err := f.svc.PlaceOrder(ctx, checkout(), cart)
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, "Ana Pérez", order.CustomerName)
	assert.Regexp(t, `^ORD-[A-Z2-9]{6}$`, order.OrderCode)
	assert.Zero(t, order.ShippingCost)
	assert.Equal(t, 4000.0, order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 1500.0, order.Items[1].Price)
	assert.Equal(t, 2, order.Items[1].Quantity)

	assert.Empty(t, cart.Lines())
	reloaded, err := shop.LoadLedger(ctx, f.carts, "c1")
	require.NoError(t, err)
	assert.Empty(t, reloaded.Lines())

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderCode, stored.OrderCode)
	assert.Equal(t, []string{ws.EventOrderCreated}, f.pub.types())
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	empty, err := shop.LoadLedger(ctx, f.carts, "empty")
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(ctx, checkout(), empty)
	assert.ErrorIs(t, err, ErrEmptyCart)

	cart, err := cartWith(ctx, f.carts, "c2", f.a)
	require.NoError(t, err)
	req := checkout()
	req.CustomerMunicipio = "   "
	_, err = f.svc.PlaceOrder(ctx, req, cart)
	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Tag)
	assert.Len(t, cart.Lines(), 1)

	orders, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSetShippingCostRecomputesFromItems(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)
	require.Equal(t, 2500.0, order.Total)

	updated, err := f.svc.SetShippingCost(ctx, order.ID, 2000)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, updated.ShippingCost)
	assert.Equal(t, 4500.0, updated.Total)

	updated, err = f.svc.SetShippingCost(ctx, order.ID, "3000")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, updated.ShippingCost)
	assert.Equal(t, 5500.0, updated.Total)
	assert.Equal(t, model.StatusPending, updated.Status)
}

func TestSetShippingCostInvalidLeavesOrderUntouched(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	for _, cost := range []any{-5, "abc", []int{1}} {
		_, err := f.svc.SetShippingCost(ctx, order.ID, cost)
		assert.ErrorIs(t, err, ErrInvalidShippingCost, "cost %v", cost)
	}

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ShippingCost)
	assert.Equal(t, 2500.0, stored.Total)
}

func TestSetShippingCostStoreFailure(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	flaky := &flakyOrders{OrderRepository: f.store.Orders(), updateErr: errBoom}
	svc := NewOrderService(flaky, f.pub, logger.Discard())

	_, err := svc.SetShippingCost(ctx, order.ID, 2000)
	assert.ErrorIs(t, err, errBoom)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ShippingCost)
	assert.Equal(t, 2500.0, stored.Total)
}

func TestSetShippingCostUnknownOrder(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.SetShippingCost(context.Background(), uuid.New(), 100)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTransitionStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	t.Run("shipping with cost recomputes total", func(t *testing.T) {
		order := f.place(t)
		updated, err := f.svc.TransitionStatus(ctx, order.ID, model.StatusShipped, 3000.0)
		require.NoError(t, err)
		assert.Equal(t, model.StatusShipped, updated.Status)
		assert.Equal(t, 3000.0, updated.ShippingCost)
		assert.Equal(t, 5500.0, updated.Total)
	})

	t.Run("other statuses only change status", func(t *testing.T) {
		order := f.place(t)
		_, err := f.svc.SetShippingCost(ctx, order.ID, 1000)
		require.NoError(t, err)

		updated, err := f.svc.TransitionStatus(ctx, order.ID, model.StatusConfirmed, 9999)
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, updated.Status)
		assert.Equal(t, 1000.0, updated.ShippingCost)
		assert.Equal(t, 3500.0, updated.Total)
	})

	t.Run("shipping without cost keeps totals", func(t *testing.T) {
		order := f.place(t)
		updated, err := f.svc.TransitionStatus(ctx, order.ID, model.StatusShipped, nil)
		require.NoError(t, err)
		assert.Equal(t, model.StatusShipped, updated.Status)
		assert.Equal(t, 2500.0, updated.Total)
	})

	t.Run("unknown status", func(t *testing.T) {
		order := f.place(t)
		_, err := f.svc.TransitionStatus(ctx, order.ID, "Perdido", nil)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestTransitionStatusNotifiesOwner(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	cart, err := cartWith(ctx, f.carts, "mine", f.a)
	require.NoError(t, err)
	req := checkout()
	req.UserID = &userID
	order, err := f.svc.PlaceOrder(ctx, req, cart)
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(ctx, order.ID, model.StatusCompleted, nil)
	require.NoError(t, err)

	var direct []published
	for _, e := range f.pub.events {
		if e.UserID != "" {
			direct = append(direct, e)
		}
	}
	require.Len(t, direct, 1)
	assert.Equal(t, userID.String(), direct[0].UserID)
	assert.Equal(t, ws.EventOrderUpdated, direct[0].Type)

	mine, err := f.svc.ListUserOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)
}

func TestBatchTransitionStatusIsBestEffort(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := f.place(t)
	second := f.place(t)
	missing := uuid.New()

	result, err := f.svc.BatchTransitionStatus(ctx, []uuid.UUID{first.ID, missing, second.ID}, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, []string{missing.String()}, result.Failed)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		o, err := f.svc.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.True(t, o.Cancelled())
	}

	_, err = f.svc.BatchTransitionStatus(ctx, []uuid.UUID{first.ID}, "nope")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	require.NoError(t, f.svc.DeleteOrder(ctx, order.ID))
	_, err := f.svc.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, order.ID), ErrOrderNotFound)
}

func TestListOrdersNewestFirst(t *testing.T) {
	f := newOrderFixture(t)
	first := f.place(t)
	second := f.place(t)

	orders, err := f.svc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}
