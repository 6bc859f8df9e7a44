// Package api holds the JSON shapes exchanged with the Order Service and their
// conversion to domain types. Amounts travel as JSON numbers and are decoded
// without passing through float64.
package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	AdminSecretHeader = "X-Admin-Secret"
)

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderItem struct {
	Name     string      `json:"name"`
	Quantity int         `json:"qty"`
	Price    json.Number `json:"price"`
	Product  string      `json:"product"`
}

type CreateOrderRequest struct {
	Customer   Customer    `json:"customerDetails"`
	Items      []OrderItem `json:"orderItems"`
	TotalPrice json.Number `json:"totalPrice"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type Order struct {
	ID         string      `json:"_id"`
	Customer   Customer    `json:"customerDetails"`
	Items      []OrderItem `json:"orderItems"`
	TotalPrice json.Number `json:"totalPrice"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type Product struct {
	ID            string      `json:"_id"`
	Name          string      `json:"name"`
	Price         json.Number `json:"price"`
	Compatibility string      `json:"compatibility,omitempty"`
	Image         string      `json:"image,omitempty"`
	InStock       bool        `json:"inStock"`
	Category      string      `json:"category,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}

func Amount(m domain.Money) json.Number {
	return json.Number(m.Amount.String())
}

func ParseMoney(n json.Number, unit currency.Unit) (domain.Money, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return domain.ZeroMoney(unit), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.Money{}, fmt.Errorf("decimal.NewFromString[%s]: %w", s, err)
	}

	return domain.NewMoney(d, unit), nil
}

func FromCustomer(c domain.CustomerDetails) Customer {
	return Customer{Name: c.Name, Phone: c.Phone, Address: c.Address}
}

func (c Customer) ToDomain() domain.CustomerDetails {
	return domain.CustomerDetails{Name: c.Name, Phone: c.Phone, Address: c.Address}
}

func FromOrderItems(items []domain.OrderItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    Amount(item.UnitPriceAtOrder),
			Product:  item.ProductRef,
		})
	}
	return out
}

func ToOrderItems(items []OrderItem, unit currency.Unit) ([]domain.OrderItem, error) {
	out := make([]domain.OrderItem, 0, len(items))
	for i, item := range items {
		price, err := ParseMoney(item.Price, unit)
		if err != nil {
			return nil, fmt.Errorf("orderItems[%d].price: %w", i, err)
		}
		out = append(out, domain.OrderItem{
			ProductRef:       item.Product,
			Name:             item.Name,
			Quantity:         item.Quantity,
			UnitPriceAtOrder: price,
		})
	}
	return out, nil
}

func FromSubmission(sub domain.OrderSubmission) CreateOrderRequest {
	return CreateOrderRequest{
		Customer:   FromCustomer(sub.Customer),
		Items:      FromOrderItems(sub.Items),
		TotalPrice: Amount(sub.TotalPrice),
	}
}

func (r CreateOrderRequest) ToSubmission(idempotencyKey string, unit currency.Unit) (domain.OrderSubmission, error) {
	items, err := ToOrderItems(r.Items, unit)
	if err != nil {
		return domain.OrderSubmission{}, err
	}

	total, err := ParseMoney(r.TotalPrice, unit)
	if err != nil {
		return domain.OrderSubmission{}, fmt.Errorf("totalPrice: %w", err)
	}

	return domain.OrderSubmission{
		IdempotencyKey: idempotencyKey,
		Customer:       r.Customer.ToDomain(),
		Items:          items,
		TotalPrice:     total,
	}, nil
}

func FromOrder(o domain.Order) Order {
	return Order{
		ID:         o.ID,
		Customer:   FromCustomer(o.Customer),
		Items:      FromOrderItems(o.Items),
		TotalPrice: Amount(o.TotalPrice),
		Status:     o.Status.String(),
		CreatedAt:  o.CreatedAt,
	}
}

// ToDomain keeps an unrecognised status as-is so the tracker can render it neutrally.
func (o Order) ToDomain(unit currency.Unit) (domain.Order, error) {
	items, err := ToOrderItems(o.Items, unit)
	if err != nil {
		return domain.Order{}, err
	}

	total, err := ParseMoney(o.TotalPrice, unit)
	if err != nil {
		return domain.Order{}, fmt.Errorf("totalPrice: %w", err)
	}

	return domain.Order{
		ID:         o.ID,
		Customer:   o.Customer.ToDomain(),
		Items:      items,
		TotalPrice: total,
		Status:     domain.OrderStatus(o.Status),
		CreatedAt:  o.CreatedAt,
	}, nil
}

func FromProduct(p domain.Product) Product {
	return Product{
		ID:            p.ID,
		Name:          p.Name,
		Price:         Amount(p.Price),
		Compatibility: p.Compatibility,
		Image:         p.Image,
		InStock:       p.InStock,
		Category:      p.Category,
	}
}

func (p Product) ToDomain(unit currency.Unit) (domain.Product, error) {
	price, err := ParseMoney(p.Price, unit)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product[%s].price: %w", p.ID, err)
	}

	return domain.Product{
		ID:            p.ID,
		Name:          p.Name,
		Price:         price,
		Compatibility: p.Compatibility,
		Image:         p.Image,
		InStock:       p.InStock,
		Category:      p.Category,
	}, nil
}
