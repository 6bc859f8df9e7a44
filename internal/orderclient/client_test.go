package orderclient_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/fixture"
	"github.com/nikolayk812/storefront/internal/orderclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

const orderJSON = `{
	"_id": "abc123",
	"customerDetails": {"name": "A", "phone": "999", "address": "X"},
	"orderItems": [{"name": "Brake Pad", "qty": 2, "price": 500, "product": "p1"}],
	"totalPrice": 1000,
	"status": "Processing",
	"createdAt": "2026-01-02T03:04:05Z"
}`

func newClient(t *testing.T, h http.HandlerFunc, opts ...orderclient.Option) *orderclient.OrderClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := orderclient.New(srv.URL, currency.INR, opts...)
	require.NoError(t, err)
	return c
}

func TestCreateOrder(t *testing.T) {
	var (
		gotKey  string
		gotBody map[string]any
	)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, orderJSON)
	})

	sub := domain.OrderSubmission{
		IdempotencyKey: "key-1",
		Customer:       domain.CustomerDetails{Name: "A", Phone: "999", Address: "X"},
		Items: []domain.OrderItem{{
			ProductRef: "p1", Name: "Brake Pad", Quantity: 2, UnitPriceAtOrder: fixture.MoneyOf(500),
		}},
		TotalPrice: fixture.MoneyOf(1000),
	}

	order, err := c.CreateOrder(t.Context(), sub)
	require.NoError(t, err)

	assert.Equal(t, "key-1", gotKey)
	assert.Contains(t, gotBody, "customerDetails")
	assert.Contains(t, gotBody, "orderItems")
	assert.Equal(t, "abc123", order.ID)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	assert.True(t, order.TotalPrice.Equal(fixture.MoneyOf(1000)))
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), order.CreatedAt.UTC())
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestCreateOrder_ServerError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"database down"}`)
	})

	_, err := c.CreateOrder(t.Context(), domain.OrderSubmission{TotalPrice: fixture.MoneyOf(1)})
	require.Error(t, err)

	var statusErr *orderclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "database down", statusErr.Body)
}

func TestGetOrder(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/abc123" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, orderJSON)
	})

	order, err := c.GetOrder(t.Context(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", order.ID)

	_, err = c.GetOrder(t.Context(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetOrder_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := orderclient.New(srv.URL, currency.INR)
	require.NoError(t, err)

	_, err = c.GetOrder(t.Context(), "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetOrder_EscapesID(t *testing.T) {
	tests := []struct {
		id      string
		escaped string
	}{
		{id: "a/b", escaped: "/api/orders/a%2Fb"},
		{id: "../../healthz", escaped: "/api/orders/..%2F..%2Fhealthz"},
		{id: ".", escaped: "/api/orders/%2E"},
		{id: "..", escaped: "/api/orders/%2E%2E"},
		{id: "50% off?", escaped: "/api/orders/50%25%20off%3F"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			var gotPath, gotEscaped string
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotEscaped = r.URL.Path, r.URL.EscapedPath()
				http.NotFound(w, r)
			})

			_, err := c.GetOrder(t.Context(), tt.id)
			assert.ErrorIs(t, err, domain.ErrOrderNotFound)
			assert.Equal(t, tt.escaped, gotEscaped)
			assert.Equal(t, "/api/orders/"+tt.id, gotPath)
		})
	}
}

func TestGetOrder_EmptyID(t *testing.T) {
	called := false
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})

	for _, id := range []string{"", "  "} {
		_, err := c.GetOrder(t.Context(), id)
		assert.Error(t, err)
		_, err = c.UpdateOrderStatus(t.Context(), id, domain.OrderStatusShipped)
		assert.Error(t, err)
	}
	assert.False(t, called)
}

func TestOrderReplyWithoutID(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := c.GetOrder(t.Context(), "abc123")
	assert.ErrorIs(t, err, orderclient.ErrMissingID)

	_, err = c.UpdateOrderStatus(t.Context(), "abc123", domain.OrderStatusShipped)
	assert.ErrorIs(t, err, orderclient.ErrMissingID)

	_, err = c.CreateOrder(t.Context(), domain.OrderSubmission{})
	assert.ErrorIs(t, err, orderclient.ErrMissingID)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	var (
		gotSecret string
		gotBody   map[string]string
	)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotSecret = r.Header.Get("X-Admin-Secret")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, orderJSON)
	}, orderclient.WithAdminSecret("admin123"))

	_, err := c.UpdateOrderStatus(t.Context(), "abc123", domain.OrderStatusOutForDelivery)
	require.NoError(t, err)

	assert.Equal(t, "admin123", gotSecret)
	assert.Equal(t, map[string]string{"status": "Out for Delivery"}, gotBody)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://example.com", "://bad"} {
		_, err := orderclient.New(raw, currency.INR)
		assert.Error(t, err, raw)
	}
}

func TestCatalogClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products":
			_, _ = io.WriteString(w, `[{"_id":"p1","name":"Brake Pad","price":500,"inStock":true,"category":"Brakes"},
				{"_id":"p2","name":"Chain","price":799.99,"inStock":false}]`)
		case "/api/products/p1":
			_, _ = io.WriteString(w, `{"_id":"p1","name":"Brake Pad","price":500,"inStock":true}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := orderclient.NewCatalogClient(srv.URL, currency.INR, nil)
	require.NoError(t, err)

	products, err := c.ListProducts(t.Context())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "INR 799.99", products[1].Price.String())
	assert.False(t, products[1].InStock)

	p, err := c.GetProduct(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Brake Pad", p.Name)

	_, err = c.GetProduct(t.Context(), "nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogClient_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c, err := orderclient.NewCatalogClient(srv.URL, currency.INR, nil)
	require.NoError(t, err)

	products, err := c.ListProducts(t.Context())
	require.NoError(t, err)
	assert.Empty(t, products)
}
