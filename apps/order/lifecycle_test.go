package order

import (
	"context"
	"testing"

	"bulut3d/apps/cart"
	"bulut3d/apps/order/model"
	"bulut3d/pkg/inflight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placed(t *testing.T, f *fixture) model.Order {
	t.Helper()
	f.carts.mu.Lock()
	f.carts.carts["user:1"] = cart.Restore(f.seed.Items())
	f.carts.mu.Unlock()
	o, err := f.svc.PlaceOrder(context.Background(), Checkout{Owner: "user:1", Address: address()})
	require.NoError(t, err)
	return o
}

func TestAdvanceAndRevert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placed(t, f)

	want := []model.Status{model.StatusPrinting, model.StatusShipped, model.StatusDelivered, model.StatusDelivered}
	for _, w := range want {
		got, err := f.svc.Advance(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, w, got.Status)
	}

	for i := 0; i < 5; i++ {
		_, err := f.svc.Revert(ctx, o.ID)
		require.NoError(t, err)
	}
	stored, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, stored.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placed(t, f)

	got, err := f.svc.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)

	_, err = f.svc.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)

	// cancelled orders sit outside the next/prev flow
	got, err = f.svc.Advance(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

func TestCancelDeliveredIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placed(t, f)
	_, err := f.svc.SetStatus(ctx, o.ID, model.StatusDelivered)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)
	stored, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, stored.Status)
}

func TestReturnFromAnyStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, start := range model.Statuses() {
		o := placed(t, f)
		_, err := f.svc.SetStatus(ctx, o.ID, start)
		require.NoError(t, err)
		got, err := f.svc.Return(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusReturned, got.Status, "from %s", start)
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	o := placed(t, f)
	_, err := f.svc.SetStatus(context.Background(), o.ID, "Bekliyor")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionMissingOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Advance(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.UpdateShipment(context.Background(), "missing", "Yurtiçi", "123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionEmitsAfterWrite(t *testing.T) {
	f := newFixture(t)
	o := placed(t, f)
	_, err := f.svc.Advance(context.Background(), o.ID)
	require.NoError(t, err)
	_, err = f.svc.Revert(context.Background(), o.ID)
	require.NoError(t, err)
	_, err = f.svc.Revert(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"order.placed", "order.status_changed", "order.status_changed"}, f.events.keys)
}

func TestTransitionBusy(t *testing.T) {
	f := newFixture(t)
	o := placed(t, f)
	guard := inflight.NewMemory()
	f.svc.guard = guard
	release, err := guard.Acquire(context.Background(), "order:"+o.ID)
	require.NoError(t, err)
	defer release()

	_, err = f.svc.Cancel(context.Background(), o.ID)
	assert.ErrorIs(t, err, inflight.ErrBusy)
}

func TestUpdateShipment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placed(t, f)

	got, err := f.svc.UpdateShipment(ctx, o.ID, " Yurtiçi Kargo ", "YK123456")
	require.NoError(t, err)
	assert.Equal(t, "Yurtiçi Kargo", got.ShippingCompany)

	stored, err := f.svc.Track(ctx, o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "YK123456", stored.TrackingNumber)
}
