package domain

import "golang.org/x/text/currency"

// Cart is an insertion-ordered snapshot of the shopper's selection. ProductRef is unique.
type Cart struct {
	Currency currency.Unit
	Items    []CartItem
}

func (c Cart) TotalPrice() Money {
	total := ZeroMoney(c.Currency)
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (c Cart) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, item.OrderItem())
	}
	return items
}

type CartItem struct {
	ProductRef string
	Name       string
	UnitPrice  Money
	Quantity   int
}

func (i CartItem) LineTotal() Money {
	return i.UnitPrice.Mul(i.Quantity)
}

// OrderItem snapshots the item at submission time.
func (i CartItem) OrderItem() OrderItem {
	return OrderItem{
		ProductRef:       i.ProductRef,
		Name:             i.Name,
		Quantity:         i.Quantity,
		UnitPriceAtOrder: i.UnitPrice,
	}
}
