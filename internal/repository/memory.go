package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// memoryOrders keeps orders in process memory. Used when no DATABASE_URL is configured and in tests.
type memoryOrders struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	byKey  map[string]string
	now    func() time.Time
}

func NewMemoryOrders() port.OrderService {
	return &memoryOrders{
		orders: make(map[string]domain.Order),
		byKey:  make(map[string]string),
		now:    time.Now,
	}
}

func (m *memoryOrders) CreateOrder(_ context.Context, sub domain.OrderSubmission) (domain.Order, error) {
	if err := sub.Validate(); err != nil {
		return domain.Order{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.TrimSpace(sub.IdempotencyKey)
	if id, ok := m.byKey[key]; ok && key != "" {
		return cloneOrder(m.orders[id]), nil
	}

	order := domain.Order{
		ID:         uuid.NewString(),
		Customer:   sub.Customer,
		Items:      slices.Clone(sub.Items),
		TotalPrice: sub.TotalPrice,
		Status:     domain.OrderStatusProcessing,
		CreatedAt:  m.now().UTC(),
	}

	m.orders[order.ID] = order
	if key != "" {
		m.byKey[key] = order.ID
	}

	return cloneOrder(order), nil
}

func (m *memoryOrders) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrOrderNotFound)
	}

	return cloneOrder(order), nil
}

func (m *memoryOrders) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("status[%s]: %w", status, domain.ErrInvalidStatus)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrOrderNotFound)
	}

	order.Status = status
	m.orders[orderID] = order

	return cloneOrder(order), nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
