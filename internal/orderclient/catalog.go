package orderclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikolayk812/storefront/internal/api"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

// CatalogClient implements port.ProductCatalog against /api/products.
type CatalogClient struct {
	baseURL string
	http    *http.Client
	unit    currency.Unit
}

var _ port.ProductCatalog = (*CatalogClient)(nil)

func NewCatalogClient(baseURL string, unit currency.Unit, hc *http.Client) (*CatalogClient, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if hc == nil {
		hc = &http.Client{}
	}

	return &CatalogClient{baseURL: base, http: hc, unit: unit}, nil
}

func (c *CatalogClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", "products")
	if err != nil {
		return nil, fmt.Errorf("url.JoinPath: %w", err)
	}

	var resp []api.Product
	if err := doJSON(ctx, c.http, http.MethodGet, endpoint, nil, nil, &resp, domain.ErrProductNotFound); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(resp))
	for _, p := range resp {
		product, err := p.ToDomain(c.unit)
		if err != nil {
			return nil, fmt.Errorf("p.ToDomain: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	endpoint, err := resourceURL(c.baseURL, "products", productID)
	if err != nil {
		return domain.Product{}, err
	}

	var resp api.Product
	if err := doJSON(ctx, c.http, http.MethodGet, endpoint, nil, nil, &resp, domain.ErrProductNotFound); err != nil {
		return domain.Product{}, fmt.Errorf("get product[%s]: %w", productID, err)
	}

	product, err := resp.ToDomain(c.unit)
	if err != nil {
		return domain.Product{}, fmt.Errorf("resp.ToDomain: %w", err)
	}

	return product, nil
}
