// Package tracker fetches an order from the Order Service and renders its lifecycle state.
package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

type State int

const (
	StateIdle State = iota
	StateLoading
	StateFound
	StateNotFound
	StateTransportError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateFound:
		return "found"
	case StateNotFound:
		return "not_found"
	case StateTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// View is what the tracker currently displays. Order is only meaningful when State is StateFound.
type View struct {
	OrderID string
	State   State
	Order   domain.Order
	Err     error
}

type Tracker struct {
	orders  port.OrderService
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	view   View
	cancel context.CancelFunc
}

type Option func(*Tracker)

func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func New(orders port.OrderService, opts ...Option) *Tracker {
	t := &Tracker{
		orders:  orders,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.view
}

// Cancel aborts the in-flight request, if any.
func (t *Tracker) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil {
		return false
	}
	t.cancel()
	return true
}

// Lookup fetches the order. NotFound and transport failures are returned as *domain.LookupError
// with distinct kinds and leave the view in the matching state.
func (t *Tracker) Lookup(ctx context.Context, orderID string) (View, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return t.View(), &domain.ValidationError{Fields: []string{"order_id"}}
	}

	reqCtx, cancel := t.start(ctx, View{OrderID: orderID, State: StateLoading})
	defer cancel()

	order, err := t.orders.GetOrder(reqCtx, orderID)
	if err != nil {
		lookupErr := &domain.LookupError{Kind: domain.LookupTransport, OrderID: orderID, Err: err}
		state := StateTransportError
		if errors.Is(err, domain.ErrOrderNotFound) {
			lookupErr.Kind = domain.LookupNotFound
			state = StateNotFound
		}

		t.logger.Info("order lookup failed",
			zap.String("order_id", orderID),
			zap.Stringer("kind", lookupErr.Kind),
			zap.Error(err),
		)
		return t.settle(View{OrderID: orderID, State: state, Err: lookupErr}), lookupErr
	}

	return t.settle(View{OrderID: orderID, State: StateFound, Order: order}), nil
}

// UpdateStatus is the administrator path. Nothing is changed locally until the Order Service
// accepts the new status; the view is then refreshed from a re-fetch. Any status may be
// assigned, including moving backwards.
func (t *Tracker) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (View, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return t.View(), &domain.ValidationError{Fields: []string{"order_id"}}
	}
	if !status.Valid() {
		return t.View(), &domain.StatusUpdateError{OrderID: orderID, Status: status, Err: domain.ErrInvalidStatus}
	}

	previous := t.View()

	reqCtx, cancel := t.start(ctx, previous)
	_, err := t.orders.UpdateOrderStatus(reqCtx, orderID, status)
	cancel()
	if err != nil {
		t.logger.Warn("order status update failed",
			zap.String("order_id", orderID),
			zap.Stringer("status", status),
			zap.Error(err),
		)
		t.settle(previous)
		return previous, &domain.StatusUpdateError{OrderID: orderID, Status: status, Err: err}
	}

	t.logger.Info("order status updated", zap.String("order_id", orderID), zap.Stringer("status", status))

	return t.Lookup(ctx, orderID)
}

func (t *Tracker) start(ctx context.Context, view View) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)

	t.mu.Lock()
	t.view = view
	t.cancel = cancel
	t.mu.Unlock()

	return reqCtx, cancel
}

func (t *Tracker) settle(view View) View {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.view = view
	t.cancel = nil
	return view
}
