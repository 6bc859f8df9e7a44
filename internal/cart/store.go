// Package cart holds the shopper's in-progress selection. It performs no I/O.
package cart

import (
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

type Store struct {
	mu       sync.Mutex
	currency currency.Unit
	items    []domain.CartItem
	index    map[string]int
	notifier port.Notifier
}

type Option func(*Store)

func WithNotifier(n port.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

func NewStore(unit currency.Unit, opts ...Option) *Store {
	s := &Store{
		currency: unit,
		index:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem merges into an existing line for the same product, otherwise appends a new line
// with the product's current price. Quantities below 1 are treated as 1.
func (s *Store) AddItem(product domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if i, ok := s.index[product.ID]; ok {
		s.items[i].Quantity += quantity
	} else {
		s.index[product.ID] = len(s.items)
		s.items = append(s.items, domain.CartItem{
			ProductRef: product.ID,
			Name:       product.Name,
			UnitPrice:  product.Price,
			Quantity:   quantity,
		})
	}
	s.mu.Unlock()

	s.notify(port.NotificationItemAdded, fmt.Sprintf("Added %d %s to cart", quantity, product.Name))
}

func (s *Store) RemoveItem(productRef string) {
	s.mu.Lock()
	i, ok := s.index[productRef]
	if ok {
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.reindex()
	}
	s.mu.Unlock()

	s.notify(port.NotificationItemRemoved, "Item removed from cart")
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[string]int)
}

func (s *Store) TotalPrice() domain.Money {
	return s.Snapshot().TotalPrice()
}

// ItemCount is the number of distinct lines, not the sum of quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *Store) Quantity(productRef string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[productRef]; ok {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) Items() []domain.CartItem {
	return s.Snapshot().Items
}

func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)

	return domain.Cart{Currency: s.currency, Items: items}
}

func (s *Store) Currency() currency.Unit {
	return s.currency
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, item := range s.items {
		s.index[item.ProductRef] = i
	}
}

func (s *Store) notify(kind port.NotificationKind, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(port.Notification{Kind: kind, Message: msg})
}
