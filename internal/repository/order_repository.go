package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	insertOrderSQL = `
INSERT INTO orders (id, idempotency_key, customer_name, customer_phone, customer_address,
                    total_amount, total_currency, status)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6::text::numeric, $7, $8)
ON CONFLICT (idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING
RETURNING id::text`

	insertOrderItemSQL = `
INSERT INTO order_items (order_id, position, product_ref, name, quantity, unit_price_amount, unit_price_currency)
VALUES ($1::uuid, $2, $3, $4, $5, $6::text::numeric, $7)`

	selectOrderSQL = `
SELECT id::text, customer_name, customer_phone, customer_address,
       total_amount::text, total_currency, status, created_at
FROM orders
WHERE id = $1::uuid`

	selectOrderIDByKeySQL = `SELECT id::text FROM orders WHERE idempotency_key = $1`

	selectOrderItemsSQL = `
SELECT product_ref, name, quantity, unit_price_amount::text, unit_price_currency
FROM order_items
WHERE order_id = $1::uuid
ORDER BY position`

	updateOrderStatusSQL = `
UPDATE orders
SET status = $2, updated_at = NOW()
WHERE id = $1::uuid
RETURNING id::text`
)

type orderRepository struct {
	q    querier
	pool *pgxpool.Pool
}

func NewOrders(pool *pgxpool.Pool) port.OrderService {
	return &orderRepository{
		q:    pool,
		pool: pool,
	}
}

func NewOrdersWithTx(tx pgx.Tx) port.OrderService {
	return &orderRepository{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

// CreateOrder stores the order and its items in one transaction with status Processing.
// A repeated idempotency key returns the order created by the first call.
func (r *orderRepository) CreateOrder(ctx context.Context, sub domain.OrderSubmission) (domain.Order, error) {
	if err := sub.Validate(); err != nil {
		return domain.Order{}, err
	}

	return withTx(ctx, r.pool, r.q, func(q querier) (domain.Order, error) {
		var orderID string
		err := q.QueryRow(ctx, insertOrderSQL,
			uuid.New(),
			strings.TrimSpace(sub.IdempotencyKey),
			sub.Customer.Name,
			sub.Customer.Phone,
			sub.Customer.Address,
			sub.TotalPrice.Amount.String(),
			sub.TotalPrice.Currency.String(),
			domain.OrderStatusProcessing.String(),
		).Scan(&orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			// idempotency key already used
			if err := q.QueryRow(ctx, selectOrderIDByKeySQL, strings.TrimSpace(sub.IdempotencyKey)).Scan(&orderID); err != nil {
				return domain.Order{}, fmt.Errorf("q.SelectOrderIDByKey: %w", err)
			}
			return getOrder(ctx, q, orderID)
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.InsertOrder: %w", err)
		}

		batch := &pgx.Batch{}
		for i, item := range sub.Items {
			batch.Queue(insertOrderItemSQL,
				orderID,
				i,
				item.ProductRef,
				item.Name,
				item.Quantity,
				item.UnitPriceAtOrder.Amount.String(),
				item.UnitPriceAtOrder.Currency.String(),
			)
		}
		if err := q.SendBatch(ctx, batch).Close(); err != nil {
			return domain.Order{}, fmt.Errorf("q.InsertOrderItems: %w", err)
		}

		return getOrder(ctx, q, orderID)
	})
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrOrderNotFound)
	}

	return getOrder(ctx, r.q, orderID)
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("status[%s]: %w", status, domain.ErrInvalidStatus)
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrOrderNotFound)
	}

	return withTx(ctx, r.pool, r.q, func(q querier) (domain.Order, error) {
		var id string
		err := q.QueryRow(ctx, updateOrderStatusSQL, orderID, status.String()).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrOrderNotFound)
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.UpdateOrderStatus: %w", err)
		}

		return getOrder(ctx, q, id)
	})
}

type orderRow struct {
	ID              string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	TotalAmount     string
	TotalCurrency   string
	Status          string
	CreatedAt       time.Time
}

type orderItemRow struct {
	ProductRef        string
	Name              string
	Quantity          int
	UnitPriceAmount   string
	UnitPriceCurrency string
}

func getOrder(ctx context.Context, q querier, orderID string) (domain.Order, error) {
	var row orderRow
	err := q.QueryRow(ctx, selectOrderSQL, orderID).Scan(
		&row.ID,
		&row.CustomerName,
		&row.CustomerPhone,
		&row.CustomerAddress,
		&row.TotalAmount,
		&row.TotalCurrency,
		&row.Status,
		&row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	rows, err := q.Query(ctx, selectOrderItemsSQL, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}
	itemRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[orderItemRow])
	if err != nil {
		return domain.Order{}, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	order, err := mapOrderRowToDomain(row, itemRows)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderRowToDomain: %w", err)
	}

	return order, nil
}

func mapOrderRowToDomain(row orderRow, itemRows []orderItemRow) (domain.Order, error) {
	total, err := parseMoney(row.TotalAmount, row.TotalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("total: %w", err)
	}

	items, err := mapOrderItemRowsToDomain(itemRows)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderItemRowsToDomain: %w", err)
	}

	return domain.Order{
		ID: row.ID,
		Customer: domain.CustomerDetails{
			Name:    row.CustomerName,
			Phone:   row.CustomerPhone,
			Address: row.CustomerAddress,
		},
		Items:      items,
		TotalPrice: total,
		Status:     domain.OrderStatus(row.Status),
		CreatedAt:  row.CreatedAt.UTC(),
	}, nil
}

func mapOrderItemRowsToDomain(rows []orderItemRow) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(rows))

	for _, row := range rows {
		price, err := parseMoney(row.UnitPriceAmount, row.UnitPriceCurrency)
		if err != nil {
			return nil, fmt.Errorf("item[%s]: %w", row.ProductRef, err)
		}

		items = append(items, domain.OrderItem{
			ProductRef:       row.ProductRef,
			Name:             row.Name,
			Quantity:         row.Quantity,
			UnitPriceAtOrder: price,
		})
	}

	return items, nil
}

func parseMoney(amount, code string) (domain.Money, error) {
	parsedCurrency, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("amount[%s] is not valid: %w", amount, err)
	}

	return domain.NewMoney(parsedAmount, parsedCurrency), nil
}
