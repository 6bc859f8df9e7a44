package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/fixture"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testOrderService checks behaviour shared by every port.OrderService backed by storage.
func testOrderService(t *testing.T, repo port.OrderService) {
	t.Run("create order: ok", func(t *testing.T) {
		sub := randomSubmission(2)

		order, err := repo.CreateOrder(t.Context(), sub)
		require.NoError(t, err)

		assert.NotEmpty(t, order.ID)
		assert.Equal(t, domain.OrderStatusProcessing, order.Status)
		assert.False(t, order.CreatedAt.IsZero())
		assertMatchesSubmission(t, sub, order)

		got, err := repo.GetOrder(t.Context(), order.ID)
		require.NoError(t, err)
		assertMatchesSubmission(t, sub, got)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("create order with same idempotency key: replayed", func(t *testing.T) {
		sub := randomSubmission(1)

		first, err := repo.CreateOrder(t.Context(), sub)
		require.NoError(t, err)

		second, err := repo.CreateOrder(t.Context(), sub)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		sub.IdempotencyKey = uuid.NewString()
		third, err := repo.CreateOrder(t.Context(), sub)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, third.ID)
	})

	t.Run("concurrent creates with same key: one order", func(t *testing.T) {
		sub := randomSubmission(1)

		const n = 5
		ids := make([]string, n)
		errs := make([]error, n)

		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				order, err := repo.CreateOrder(context.Background(), sub)
				ids[i], errs[i] = order.ID, err
			}()
		}
		wg.Wait()

		for i := range n {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}
	})

	t.Run("create order without key: not deduplicated", func(t *testing.T) {
		sub := randomSubmission(1)
		sub.IdempotencyKey = ""

		first, err := repo.CreateOrder(t.Context(), sub)
		require.NoError(t, err)
		second, err := repo.CreateOrder(t.Context(), sub)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("create order with missing customer fields: error", func(t *testing.T) {
		sub := randomSubmission(1)
		sub.Customer.Phone = ""

		_, err := repo.CreateOrder(t.Context(), sub)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, []string{"phone"}, validationErr.Fields)
	})

	t.Run("create order without items: error", func(t *testing.T) {
		sub := randomSubmission(0)

		_, err := repo.CreateOrder(t.Context(), sub)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("create order with invalid item: error", func(t *testing.T) {
		zeroQty := randomSubmission(2)
		zeroQty.Items[1].Quantity = 0

		negativePrice := randomSubmission(1)
		negativePrice.Items[0].UnitPriceAtOrder = fixture.MoneyOf(-1)

		for _, sub := range []domain.OrderSubmission{zeroQty, negativePrice} {
			_, err := repo.CreateOrder(t.Context(), sub)
			assert.ErrorIs(t, err, domain.ErrInvalidOrder)
		}

		// nothing was stored under the rejected key
		fixed := randomSubmission(1)
		fixed.IdempotencyKey = negativePrice.IdempotencyKey
		order, err := repo.CreateOrder(t.Context(), fixed)
		require.NoError(t, err)
		assertMatchesSubmission(t, fixed, order)
	})

	t.Run("get unknown order: not found", func(t *testing.T) {
		_, err := repo.GetOrder(t.Context(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)

		_, err = repo.GetOrder(t.Context(), "not-an-id")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("update status: any transition", func(t *testing.T) {
		order, err := repo.CreateOrder(t.Context(), randomSubmission(1))
		require.NoError(t, err)

		for _, status := range []domain.OrderStatus{
			domain.OrderStatusShipped,
			domain.OrderStatusDelivered,
			domain.OrderStatusProcessing,
		} {
			updated, err := repo.UpdateOrderStatus(t.Context(), order.ID, status)
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)

			got, err := repo.GetOrder(t.Context(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, status, got.Status)
		}
	})

	t.Run("update status with invalid value: error", func(t *testing.T) {
		order, err := repo.CreateOrder(t.Context(), randomSubmission(1))
		require.NoError(t, err)

		_, err = repo.UpdateOrderStatus(t.Context(), order.ID, domain.OrderStatus("Lost"))
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)

		got, err := repo.GetOrder(t.Context(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusProcessing, got.Status)
	})

	t.Run("update status of unknown order: not found", func(t *testing.T) {
		_, err := repo.UpdateOrderStatus(t.Context(), uuid.NewString(), domain.OrderStatusShipped)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func randomSubmission(items int) domain.OrderSubmission {
	sub := domain.OrderSubmission{
		IdempotencyKey: uuid.NewString(),
		Customer:       fixture.Customer(),
		TotalPrice:     fixture.MoneyOf(0),
	}

	for range items {
		p := fixture.Product()
		item := domain.OrderItem{
			ProductRef:       p.ID,
			Name:             p.Name,
			Quantity:         2,
			UnitPriceAtOrder: p.Price,
		}
		sub.Items = append(sub.Items, item)
		sub.TotalPrice = sub.TotalPrice.Add(item.LineTotal())
	}

	return sub
}

func assertMatchesSubmission(t *testing.T, sub domain.OrderSubmission, order domain.Order) {
	t.Helper()

	opts := cmp.Options{
		cmp.Comparer(domain.Money.Equal),
		cmpopts.EquateEmpty(),
	}

	assert.Empty(t, cmp.Diff(sub.Customer, order.Customer))
	assert.Empty(t, cmp.Diff(sub.Items, order.Items, opts))
	assert.True(t, sub.TotalPrice.Equal(order.TotalPrice), "total %s != %s", sub.TotalPrice, order.TotalPrice)
}
