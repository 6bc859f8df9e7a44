// Package catalog serves a fixed product list loaded from YAML.
package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

type productEntry struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Price         string `yaml:"price"`
	Compatibility string `yaml:"compatibility"`
	Image         string `yaml:"image"`
	InStock       *bool  `yaml:"in_stock"`
	Category      string `yaml:"category"`
}

type catalogFile struct {
	Currency string         `yaml:"currency"`
	Products []productEntry `yaml:"products"`
}

// FileCatalog is read-only after load.
type FileCatalog struct {
	products []domain.Product
	byID     map[string]int
}

var _ port.ProductCatalog = (*FileCatalog)(nil)

func LoadFile(path string, unit currency.Unit) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return Parse(data, unit)
}

// Parse decodes a catalog document priced in unit. A document that declares a different
// currency is rejected.
func Parse(data []byte, unit currency.Unit) (*FileCatalog, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	if code := strings.TrimSpace(doc.Currency); code != "" {
		parsed, err := currency.ParseISO(code)
		if err != nil {
			return nil, fmt.Errorf("currency.ParseISO[%s]: %w", code, err)
		}
		if parsed != unit {
			return nil, fmt.Errorf("catalog currency %s, store currency %s: %w", parsed, unit, domain.ErrCurrencyMismatch)
		}
	}

	c := &FileCatalog{
		products: make([]domain.Product, 0, len(doc.Products)),
		byID:     make(map[string]int, len(doc.Products)),
	}

	for i, entry := range doc.Products {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("products[%d]: id is empty", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("products[%d]: duplicate id %s", i, id)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(entry.Price))
		if err != nil {
			return nil, fmt.Errorf("products[%d].price: %w", i, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("products[%d].price: negative", i)
		}

		inStock := true
		if entry.InStock != nil {
			inStock = *entry.InStock
		}

		c.byID[id] = len(c.products)
		c.products = append(c.products, domain.Product{
			ID:            id,
			Name:          entry.Name,
			Price:         domain.NewMoney(amount, unit),
			Compatibility: entry.Compatibility,
			Image:         entry.Image,
			InStock:       inStock,
			Category:      entry.Category,
		})
	}

	return c, nil
}

func (c *FileCatalog) ListProducts(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func (c *FileCatalog) GetProduct(_ context.Context, productID string) (domain.Product, error) {
	i, ok := c.byID[strings.TrimSpace(productID)]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrProductNotFound)
	}
	return c.products[i], nil
}
