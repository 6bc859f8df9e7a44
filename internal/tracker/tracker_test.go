package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/fixture"
	"github.com/nikolayk812/storefront/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeOrders serves orders from a map. getErr and updateErr override the outcome when set.
type fakeOrders struct {
	mu          sync.Mutex
	orders      map[string]domain.Order
	getErr      error
	updateErr   error
	getBlock    chan struct{}
	updateCalls int
}

func newFakeOrders(orders ...domain.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) CreateOrder(context.Context, domain.OrderSubmission) (domain.Order, error) {
	return domain.Order{}, errors.New("not supported")
}

func (f *fakeOrders) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if f.getBlock != nil {
		select {
		case <-f.getBlock:
		case <-ctx.Done():
			return domain.Order{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return domain.Order{}, f.getErr
	}
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	if f.updateErr != nil {
		return domain.Order{}, f.updateErr
	}
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	o.Status = status
	f.orders[id] = o
	return o, nil
}

func TestLookup_Found(t *testing.T) {
	order := fixture.Order(domain.OrderStatusProcessing)
	tr := tracker.New(newFakeOrders(order))

	view, err := tr.Lookup(t.Context(), "  "+order.ID+" ")
	require.NoError(t, err)

	assert.Equal(t, tracker.StateFound, view.State)
	assert.Equal(t, order.ID, view.OrderID)
	assert.Empty(t, cmp.Diff(order, view.Order, cmp.Comparer(domain.Money.Equal)))
	assert.Equal(t, view, tr.View())
}

func TestLookup_NotFound(t *testing.T) {
	tr := tracker.New(newFakeOrders())

	view, err := tr.Lookup(t.Context(), "missing")
	require.Error(t, err)

	var lookupErr *domain.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.True(t, lookupErr.NotFound())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Equal(t, tracker.StateNotFound, view.State)
	assert.Equal(t, "Order not found. Please check the order ID.", tracker.Message(view))
}

func TestLookup_TransportErrorIsDistinct(t *testing.T) {
	orders := newFakeOrders()
	orders.getErr = errors.New("connection refused")
	tr := tracker.New(orders)

	view, err := tr.Lookup(t.Context(), "abc")
	require.Error(t, err)

	var lookupErr *domain.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, domain.LookupTransport, lookupErr.Kind)
	assert.False(t, lookupErr.NotFound())
	assert.Equal(t, tracker.StateTransportError, view.State)
	assert.NotEqual(t, tracker.Message(view), tracker.Message(tracker.View{State: tracker.StateNotFound}))
}

func TestLookup_EmptyIDMakesNoCall(t *testing.T) {
	orders := newFakeOrders()
	orders.getErr = errors.New("should not be called")
	tr := tracker.New(orders)

	view, err := tr.Lookup(t.Context(), "   ")

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"order_id"}, validationErr.Fields)
	assert.Equal(t, tracker.StateIdle, view.State)
}

func TestLookup_Timeout(t *testing.T) {
	orders := newFakeOrders()
	orders.getBlock = make(chan struct{})
	tr := tracker.New(orders, tracker.WithTimeout(20*time.Millisecond))

	view, err := tr.Lookup(t.Context(), "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, tracker.StateTransportError, view.State)
}

func TestLookup_Cancel(t *testing.T) {
	orders := newFakeOrders()
	orders.getBlock = make(chan struct{})
	tr := tracker.New(orders)

	done := make(chan error, 1)
	go func() {
		_, err := tr.Lookup(context.Background(), "slow")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return tr.View().State == tracker.StateLoading
	}, time.Second, time.Millisecond)
	require.True(t, tr.Cancel())

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, tr.Cancel())
}

func TestUpdateStatus_RefetchesOnSuccess(t *testing.T) {
	order := fixture.Order(domain.OrderStatusProcessing)
	orders := newFakeOrders(order)
	tr := tracker.New(orders)

	_, err := tr.Lookup(t.Context(), order.ID)
	require.NoError(t, err)

	view, err := tr.UpdateStatus(t.Context(), order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	assert.Equal(t, tracker.StateFound, view.State)
	assert.Equal(t, domain.OrderStatusShipped, view.Order.Status)
	assert.Equal(t, 2, tracker.Render(view.Order.Status).Step)
}

func TestUpdateStatus_BackwardsAllowed(t *testing.T) {
	order := fixture.Order(domain.OrderStatusDelivered)
	tr := tracker.New(newFakeOrders(order))

	view, err := tr.UpdateStatus(t.Context(), order.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, view.Order.Status)
}

func TestUpdateStatus_FailureKeepsPreviousView(t *testing.T) {
	order := fixture.Order(domain.OrderStatusProcessing)
	orders := newFakeOrders(order)
	tr := tracker.New(orders)

	before, err := tr.Lookup(t.Context(), order.ID)
	require.NoError(t, err)

	orders.updateErr = errors.New("500 internal server error")

	view, err := tr.UpdateStatus(t.Context(), order.ID, domain.OrderStatusShipped)
	require.Error(t, err)

	var updateErr *domain.StatusUpdateError
	require.ErrorAs(t, err, &updateErr)
	assert.Equal(t, domain.OrderStatusShipped, updateErr.Status)
	assert.Equal(t, domain.OrderStatusProcessing, view.Order.Status)
	assert.Equal(t, before, tr.View())
}

func TestUpdateStatus_InvalidStatusMakesNoCall(t *testing.T) {
	order := fixture.Order(domain.OrderStatusProcessing)
	orders := newFakeOrders(order)
	tr := tracker.New(orders)

	_, err := tr.UpdateStatus(t.Context(), order.ID, domain.OrderStatus("Lost"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Zero(t, orders.updateCalls)
}

func TestRender(t *testing.T) {
	tests := []struct {
		status   domain.OrderStatus
		wantStep int
		wantTone tracker.Tone
		wantHint bool
	}{
		{status: domain.OrderStatusProcessing, wantStep: 1, wantTone: tracker.ToneOrange, wantHint: true},
		{status: domain.OrderStatusShipped, wantStep: 2, wantTone: tracker.ToneBlue},
		{status: domain.OrderStatusOutForDelivery, wantStep: 3, wantTone: tracker.TonePurple},
		{status: domain.OrderStatusDelivered, wantStep: 4, wantTone: tracker.ToneGreen},
		{status: domain.OrderStatus("Lost"), wantStep: 0, wantTone: tracker.ToneNeutral},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := tracker.Render(tt.status)

			assert.Equal(t, string(tt.status), got.Label)
			assert.Equal(t, tt.wantStep, got.Step)
			assert.Equal(t, tt.wantTone, got.Tone)
			assert.Len(t, got.Steps, 4)
			assert.Equal(t, tt.wantHint, got.Hint != "")
		})
	}
}

func TestAdminGate(t *testing.T) {
	gate := tracker.NewAdminGate("admin123")
	assert.False(t, gate.Unlocked())

	assert.False(t, gate.Unlock("wrong"))
	assert.False(t, gate.Unlocked())

	assert.True(t, gate.Unlock("admin123"))
	assert.True(t, gate.Unlocked())

	gate.Lock()
	assert.False(t, gate.Unlocked())

	assert.False(t, tracker.NewAdminGate("").Unlock(""))
}
