package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
)

// ValidationError reports required input that is missing. It never reaches the network.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// CheckoutError means order creation failed. The cart is left as it was.
type CheckoutError struct {
	Err error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed: %v", e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

type LookupKind int

const (
	LookupNotFound LookupKind = iota + 1
	LookupTransport
)

func (k LookupKind) String() string {
	switch k {
	case LookupNotFound:
		return "not_found"
	case LookupTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// LookupError separates a bad order id (NotFound) from a failure worth retrying (Transport).
type LookupError struct {
	Kind    LookupKind
	OrderID string
	Err     error
}

func (e *LookupError) Error() string {
	if e.Kind == LookupNotFound {
		return fmt.Sprintf("order %q not found", e.OrderID)
	}
	return fmt.Sprintf("lookup order %q: %v", e.OrderID, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) NotFound() bool { return e.Kind == LookupNotFound }

type StatusUpdateError struct {
	OrderID string
	Status  OrderStatus
	Err     error
}

func (e *StatusUpdateError) Error() string {
	return fmt.Sprintf("update order %q to %q: %v", e.OrderID, e.Status, e.Err)
}

func (e *StatusUpdateError) Unwrap() error { return e.Err }
