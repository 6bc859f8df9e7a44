// Package checkout turns the cart into a persisted order.
//
// An attempt moves Idle -> Validating -> Submitting -> Succeeded | Failed. Only one attempt
// may be in Validating or Submitting at a time; a second call is rejected with
// domain.ErrCheckoutInProgress so a double submit cannot create two orders.
package checkout

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether the submit control must be disabled.
func (s State) Busy() bool {
	return s == StateValidating || s == StateSubmitting
}

// CartStore is the part of cart.Store the orchestrator needs.
type CartStore interface {
	Snapshot() domain.Cart
	Clear()
}

type Handoff interface {
	Send(ctx context.Context, orderID string, customer domain.CustomerDetails, items []domain.OrderItem, total domain.Money)
}

// Result tells the caller which order to open in the tracker.
type Result struct {
	Order      domain.Order
	TrackingID string
}

type Orchestrator struct {
	cart    CartStore
	orders  port.OrderService
	handoff Handoff
	timeout time.Duration
	newKey  func() string
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	pending *attempt
}

// attempt remembers the idempotency key of a submission whose outcome is unknown to the
// client, so an identical retry is deduplicated by the Order Service.
type attempt struct {
	key string
	sub domain.OrderSubmission
}

type Option func(*Orchestrator)

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithKeyGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newKey = fn
		}
	}
}

func NewOrchestrator(cart CartStore, orders port.OrderService, handoff Handoff, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:    cart,
		orders:  orders,
		handoff: handoff,
		timeout: DefaultTimeout,
		newKey:  uuid.NewString,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Cancel aborts the in-flight create-order request. It reports whether one was running.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel == nil {
		return false
	}
	o.cancel()
	return true
}

// Checkout validates the customer, submits the cart and, on success, hands the order to the
// messaging channel and clears the cart, in that order. On failure the cart is untouched.
func (o *Orchestrator) Checkout(ctx context.Context, customer domain.CustomerDetails) (Result, error) {
	if !o.begin() {
		return Result{}, domain.ErrCheckoutInProgress
	}

	customer = customer.Normalize()
	if err := customer.Validate(); err != nil {
		o.finish(StateFailed, nil)
		return Result{}, err
	}

	snapshot := o.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		o.finish(StateFailed, nil)
		return Result{}, &domain.ValidationError{Fields: []string{"cart"}}
	}

	sub := domain.OrderSubmission{
		Customer:   customer,
		Items:      snapshot.OrderItems(),
		TotalPrice: snapshot.TotalPrice(),
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	sub.IdempotencyKey = o.submitting(sub, cancel)

	logger := o.logger.With(zap.String("idempotency_key", sub.IdempotencyKey))
	logger.Info("submitting order",
		zap.Int("lines", len(sub.Items)),
		zap.String("total", sub.TotalPrice.String()),
	)

	order, err := o.orders.CreateOrder(reqCtx, sub)
	if err == nil && order.ID == "" {
		err = errors.New("order service returned no order id")
	}
	if err != nil {
		logger.Warn("order submission failed", zap.Error(err))
		o.finish(StateFailed, &attempt{key: sub.IdempotencyKey, sub: sub})
		return Result{}, &domain.CheckoutError{Err: err}
	}

	logger.Info("order created", zap.String("order_id", order.ID))

	o.handoff.Send(ctx, order.ID, sub.Customer, sub.Items, sub.TotalPrice)
	o.cart.Clear()
	o.finish(StateSucceeded, nil)

	return Result{Order: order, TrackingID: order.ID}, nil
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Busy() {
		return false
	}
	o.state = StateValidating
	return true
}

func (o *Orchestrator) submitting(sub domain.OrderSubmission, cancel context.CancelFunc) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateSubmitting
	o.cancel = cancel

	if o.pending != nil && sameSubmission(o.pending.sub, sub) {
		return o.pending.key
	}
	o.pending = nil
	return o.newKey()
}

func (o *Orchestrator) finish(state State, pending *attempt) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = state
	o.cancel = nil
	if state == StateSucceeded {
		o.pending = nil
	} else if pending != nil {
		o.pending = pending
	}
}

func sameSubmission(a, b domain.OrderSubmission) bool {
	if a.Customer != b.Customer || !a.TotalPrice.Equal(b.TotalPrice) {
		return false
	}
	return slices.EqualFunc(a.Items, b.Items, func(x, y domain.OrderItem) bool {
		return x.ProductRef == y.ProductRef &&
			x.Name == y.Name &&
			x.Quantity == y.Quantity &&
			x.UnitPriceAtOrder.Equal(y.UnitPriceAtOrder)
	})
}
