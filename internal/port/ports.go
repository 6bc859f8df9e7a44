package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, sub domain.OrderSubmission) (domain.Order, error)
	// GetOrder returns domain.ErrOrderNotFound (possibly wrapped) for unknown ids.
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
}

type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

// MessagingChannel hands a pre-formatted message to a human operator. Delivery is not observed.
type MessagingChannel interface {
	Open(ctx context.Context, destination, payload string) error
}

type NotificationKind string

const (
	NotificationItemAdded   NotificationKind = "item_added"
	NotificationItemRemoved NotificationKind = "item_removed"
)

type Notification struct {
	Kind    NotificationKind
	Message string
}

type Notifier interface {
	Notify(n Notification)
}
