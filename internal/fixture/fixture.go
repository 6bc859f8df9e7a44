// Package fixture builds random domain values for tests.
package fixture

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var Currency = currency.INR

func Money() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 1000)).Round(2),
		Currency: Currency,
	}
}

func MoneyOf(amount int64) domain.Money {
	return domain.NewMoney(decimal.NewFromInt(amount), Currency)
}

func Product() domain.Product {
	return domain.Product{
		ID:            gofakeit.UUID(),
		Name:          gofakeit.ProductName(),
		Price:         Money(),
		Compatibility: gofakeit.CarModel(),
		Image:         gofakeit.URL(),
		InStock:       true,
		Category:      gofakeit.RandomString([]string{"Engine", "Brakes", "Body", "Electrical", "Accessories", "Tyres"}),
	}
}

func ProductWithPrice(name string, amount int64) domain.Product {
	p := Product()
	p.Name = name
	p.Price = MoneyOf(amount)
	return p
}

func Customer() domain.CustomerDetails {
	return domain.CustomerDetails{
		Name:    gofakeit.Name(),
		Phone:   gofakeit.Phone(),
		Address: gofakeit.Street() + ", " + gofakeit.City(),
	}
}

func Order(status domain.OrderStatus) domain.Order {
	item := domain.OrderItem{
		ProductRef:       gofakeit.UUID(),
		Name:             gofakeit.ProductName(),
		Quantity:         gofakeit.IntRange(1, 5),
		UnitPriceAtOrder: Money(),
	}
	return domain.Order{
		ID:         gofakeit.UUID(),
		Customer:   Customer(),
		Items:      []domain.OrderItem{item},
		TotalPrice: item.LineTotal(),
		Status:     status,
		CreatedAt:  gofakeit.Date().UTC(),
	}
}
