// Package orderclient talks to the Order Service over REST.
package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nikolayk812/storefront/internal/api"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

// OrderClient implements port.OrderService against /api/orders.
type OrderClient struct {
	baseURL     string
	http        *http.Client
	unit        currency.Unit
	adminSecret string
}

type Option func(*OrderClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *OrderClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAdminSecret sets the secret sent on status updates.
func WithAdminSecret(secret string) Option {
	return func(c *OrderClient) {
		c.adminSecret = secret
	}
}

var _ port.OrderService = (*OrderClient)(nil)

// ErrMissingID is returned when a successful reply carries no order id.
var ErrMissingID = errors.New("response has no _id")

// New builds a client. Per-call deadlines come from the caller's context.
func New(baseURL string, unit currency.Unit, opts ...Option) (*OrderClient, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &OrderClient{
		baseURL: base,
		http:    &http.Client{},
		unit:    unit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *OrderClient) CreateOrder(ctx context.Context, sub domain.OrderSubmission) (domain.Order, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", "orders")
	if err != nil {
		return domain.Order{}, fmt.Errorf("url.JoinPath: %w", err)
	}

	headers := map[string]string{}
	if sub.IdempotencyKey != "" {
		headers[api.IdempotencyHeader] = sub.IdempotencyKey
	}

	var resp api.Order
	if err := c.do(ctx, http.MethodPost, endpoint, api.FromSubmission(sub), headers, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	if resp.ID == "" {
		return domain.Order{}, fmt.Errorf("create order: %w", ErrMissingID)
	}

	order, err := resp.ToDomain(c.unit)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resp.ToDomain: %w", err)
	}

	return order, nil
}

func (c *OrderClient) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	endpoint, err := resourceURL(c.baseURL, "orders", orderID)
	if err != nil {
		return domain.Order{}, err
	}

	var resp api.Order
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("get order[%s]: %w", orderID, err)
	}
	if resp.ID == "" {
		return domain.Order{}, fmt.Errorf("get order[%s]: %w", orderID, ErrMissingID)
	}

	order, err := resp.ToDomain(c.unit)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resp.ToDomain: %w", err)
	}

	return order, nil
}

func (c *OrderClient) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	endpoint, err := resourceURL(c.baseURL, "orders", orderID)
	if err != nil {
		return domain.Order{}, err
	}

	headers := map[string]string{}
	if c.adminSecret != "" {
		headers[api.AdminSecretHeader] = c.adminSecret
	}

	var resp api.Order
	body := api.UpdateStatusRequest{Status: status.String()}
	if err := c.do(ctx, http.MethodPut, endpoint, body, headers, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("update order[%s] status: %w", orderID, err)
	}
	if resp.ID == "" {
		return domain.Order{}, fmt.Errorf("update order[%s] status: %w", orderID, ErrMissingID)
	}

	order, err := resp.ToDomain(c.unit)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resp.ToDomain: %w", err)
	}

	return order, nil
}

// StatusError is a non-2xx reply other than 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (c *OrderClient) do(ctx context.Context, method, endpoint string, in any, headers map[string]string, out any) error {
	return doJSON(ctx, c.http, method, endpoint, in, headers, out, domain.ErrOrderNotFound)
}

func doJSON(ctx context.Context, hc *http.Client, method, endpoint string, in any, headers map[string]string, out any, notFound error) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return notFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Body: drainError(resp.Body)}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}

func drainError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 2048))
	if err != nil {
		return ""
	}

	var apiErr api.Error
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return strings.TrimSpace(string(data))
}

// resourceURL builds base/api/<collection>/<id> with id as a single escaped
// path segment, so ids containing "/" or dot segments stay inside the collection.
func resourceURL(base, collection, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%s id is empty", collection)
	}

	segment := url.PathEscape(id)
	if segment == "." || segment == ".." {
		segment = strings.ReplaceAll(segment, ".", "%2E")
	}

	return base + "/api/" + collection + "/" + segment, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", errors.New("base url is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url %q: scheme must be http or https", raw)
	}

	return raw, nil
}
