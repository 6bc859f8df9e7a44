// Package orderserver is a reference Order Service exposing the REST contract the storefront client uses.
package orderserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/storefront/internal/api"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const maxBodyBytes = 1 << 20

type Server struct {
	orders      port.OrderService
	catalog     port.ProductCatalog
	unit        currency.Unit
	adminSecret string
	logger      *zap.Logger
	metrics     *Metrics
}

type Option func(*Server)

func WithCatalog(catalog port.ProductCatalog) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithAdminSecret requires X-Admin-Secret on status updates. Empty disables the check.
func WithAdminSecret(secret string) Option {
	return func(s *Server) {
		s.adminSecret = secret
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

func New(orders port.OrderService, unit currency.Unit, opts ...Option) *Server {
	s := &Server{
		orders: orders,
		unit:   unit,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.createOrder)
			r.Get("/{orderID}", s.getOrder)
			r.Put("/{orderID}", s.updateOrderStatus)
		})
		r.Get("/products", s.listProducts)
		r.Get("/products/{productID}", s.getProduct)
	})

	return r
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req api.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key := strings.TrimSpace(r.Header.Get(api.IdempotencyHeader))
	sub, err := req.ToSubmission(key, s.unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub.Customer = sub.Customer.Normalize()
	if err := sub.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	order, err := s.orders.CreateOrder(r.Context(), sub)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.metrics.Orders.Inc()

	s.log(r).Info("order created",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Stringer("total", order.TotalPrice),
	)
	writeJSON(w, http.StatusCreated, api.FromOrder(order))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathParam(w, r, "orderID")
	if !ok {
		return
	}

	order, err := s.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.FromOrder(order))
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if s.adminSecret != "" {
		got := r.Header.Get(api.AdminSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminSecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "admin secret required")
			return
		}
	}

	var req api.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orderID, ok := pathParam(w, r, "orderID")
	if !ok {
		return
	}

	order, err := s.orders.UpdateOrderStatus(r.Context(), orderID, status)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.log(r).Info("order status updated", zap.String("order_id", orderID), zap.Stringer("status", status))
	writeJSON(w, http.StatusOK, api.FromOrder(order))
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	out := []api.Product{}
	if s.catalog != nil {
		products, err := s.catalog.ListProducts(r.Context())
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		for _, p := range products {
			out = append(out, api.FromProduct(p))
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	productID, ok := pathParam(w, r, "productID")
	if !ok {
		return
	}

	p, err := s.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.FromProduct(p))
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "order has no items")
	case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, domain.ErrCurrencyMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	default:
		s.log(r).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return s.logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", ww.BytesWritten()),
		}

		switch status := ww.Status(); {
		case status >= http.StatusInternalServerError:
			s.logger.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("request completed", fields...)
		default:
			s.logger.Debug("request completed", fields...)
		}
	})
}

// pathParam decodes a route parameter. chi matches on RawPath when the
// request carries escaped bytes, leaving the parameter escaped.
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, true
	}

	decoded, err := url.PathUnescape(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+key)
		return "", false
	}
	return decoded, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.Error{Message: msg})
}
