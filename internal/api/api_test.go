package api_test

import (
	"encoding/json"
	"testing"

	"github.com/nikolayk812/storefront/internal/api"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/fixture"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		in      json.Number
		want    string
		wantErr bool
	}{
		{name: "integer", in: "500", want: "500"},
		{name: "fraction keeps precision", in: "0.1", want: "0.1"},
		{name: "empty is zero", in: "", want: "0"},
		{name: "garbage", in: "12abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := api.ParseMoney(tt.in, currency.INR)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.want)), got.Amount.String())
			assert.Equal(t, currency.INR, got.Currency)
		})
	}
}

func TestCreateOrderRequest_JSON(t *testing.T) {
	sub := domain.OrderSubmission{
		IdempotencyKey: "key-1",
		Customer:       domain.CustomerDetails{Name: "A", Phone: "999", Address: "X"},
		Items: []domain.OrderItem{{
			ProductRef:       "p1",
			Name:             "Brake Pad",
			Quantity:         2,
			UnitPriceAtOrder: fixture.MoneyOf(500),
		}},
		TotalPrice: fixture.MoneyOf(1000),
	}

	raw, err := json.Marshal(api.FromSubmission(sub))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"customerDetails": {"name": "A", "phone": "999", "address": "X"},
		"orderItems": [{"name": "Brake Pad", "qty": 2, "price": 500, "product": "p1"}],
		"totalPrice": 1000
	}`, string(raw))

	var decoded api.CreateOrderRequest
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := decoded.ToSubmission("key-1", currency.INR)
	require.NoError(t, err)
	assert.Equal(t, "key-1", got.IdempotencyKey)
	assert.True(t, got.TotalPrice.Equal(sub.TotalPrice))
	assert.True(t, got.Items[0].UnitPriceAtOrder.Equal(sub.Items[0].UnitPriceAtOrder))
}

func TestOrder_ToDomainKeepsUnknownStatus(t *testing.T) {
	o := api.Order{ID: "abc", Status: "Lost", TotalPrice: "10"}

	got, err := o.ToDomain(currency.INR)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatus("Lost"), got.Status)
	assert.False(t, got.Status.Valid())
}
