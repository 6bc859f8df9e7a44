package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusProcessing     OrderStatus = "Processing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
)

var orderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// Statuses returns the display progression. Transitions between them are not restricted.
func Statuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for _, status := range orderStatuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Step is the 1-based position in the progression, 0 for unknown values.
func (s OrderStatus) Step() int {
	for i, status := range orderStatuses {
		if s == status {
			return i + 1
		}
	}
	return 0
}

func (s OrderStatus) Valid() bool {
	return s.Step() > 0
}

func (s OrderStatus) String() string {
	return string(s)
}

type CustomerDetails struct {
	Name    string
	Phone   string
	Address string
}

// Normalize trims surrounding whitespace from every field.
func (c CustomerDetails) Normalize() CustomerDetails {
	return CustomerDetails{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

func (c CustomerDetails) Validate() error {
	n := c.Normalize()

	var missing []string
	if n.Name == "" {
		missing = append(missing, "name")
	}
	if n.Phone == "" {
		missing = append(missing, "phone")
	}
	if n.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	return nil
}

type OrderItem struct {
	ProductRef       string
	Name             string
	Quantity         int
	UnitPriceAtOrder Money
}

func (i OrderItem) LineTotal() Money {
	return i.UnitPriceAtOrder.Mul(i.Quantity)
}

// OrderSubmission is the create-order payload. TotalPrice is computed by the client and
// accepted by the Order Service as-is.
type OrderSubmission struct {
	IdempotencyKey string
	Customer       CustomerDetails
	Items          []OrderItem
	TotalPrice     Money
}

// Validate checks what storage relies on: customer details, at least one item,
// positive quantities, non-negative prices and a single currency.
func (s OrderSubmission) Validate() error {
	if err := s.Customer.Validate(); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return ErrEmptyCart
	}

	for i, item := range s.Items {
		switch {
		case item.Quantity < 1:
			return fmt.Errorf("%w: orderItems[%d].qty must be at least 1", ErrInvalidOrder, i)
		case item.UnitPriceAtOrder.Amount.IsNegative():
			return fmt.Errorf("%w: orderItems[%d].price must not be negative", ErrInvalidOrder, i)
		case item.UnitPriceAtOrder.Currency != s.TotalPrice.Currency:
			return fmt.Errorf("%w: orderItems[%d].price in %s, total in %s", ErrCurrencyMismatch, i,
				item.UnitPriceAtOrder.Currency, s.TotalPrice.Currency)
		}
	}
	if s.TotalPrice.Amount.IsNegative() {
		return fmt.Errorf("%w: totalPrice must not be negative", ErrInvalidOrder)
	}

	return nil
}

type Order struct {
	ID         string
	Customer   CustomerDetails
	Items      []OrderItem
	TotalPrice Money
	Status     OrderStatus
	CreatedAt  time.Time
}
