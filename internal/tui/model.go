// Package tui is the terminal storefront: catalog, cart, checkout form and order tracker.
// All state changes happen inside Update; network calls run as tea.Cmds.
package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/tracker"
)

type screen int

const (
	screenCatalog screen = iota
	screenCart
	screenCheckout
	screenTracker
)

type trackerMode int

const (
	trackerInputID trackerMode = iota
	trackerInputSecret
	trackerAdmin
)

const (
	fieldName = iota
	fieldPhone
	fieldAddress
	fieldCount
)

// Toasts collects cart notifications for display. It is safe for concurrent use.
type Toasts struct {
	mu   sync.Mutex
	last string
}

func (t *Toasts) Notify(n port.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = n.Message
}

func (t *Toasts) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.last
}

type Deps struct {
	Catalog        port.ProductCatalog
	Cart           *cart.Store
	Checkout       *checkout.Orchestrator
	Tracker        *tracker.Tracker
	AdminGate      *tracker.AdminGate
	Toasts         *Toasts
	CatalogTimeout time.Duration
}

type Model struct {
	deps Deps

	screen screen
	status string

	products        []domain.Product
	productsErr     error
	productsLoading bool
	cursor          int
	cartCursor      int

	form       [fieldCount]string
	focus      int
	formErr    string
	submitting bool

	trackMode    trackerMode
	trackInput   string
	secretInput  string
	trackView    tracker.View
	trackErr     string
	lookingUp    bool
	statusCursor int
}

func New(deps Deps) Model {
	if deps.CatalogTimeout <= 0 {
		deps.CatalogTimeout = checkout.DefaultTimeout
	}
	if deps.Toasts == nil {
		deps.Toasts = &Toasts{}
	}
	return Model{
		deps:            deps,
		productsLoading: true,
		status:          "Loading products...",
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadProducts()
}

type productsLoadedMsg struct {
	products []domain.Product
	err      error
}

type checkoutDoneMsg struct {
	result checkout.Result
	err    error
}

type lookupDoneMsg struct {
	view tracker.View
	err  error
}

type statusUpdatedMsg struct {
	view tracker.View
	err  error
}

func (m Model) loadProducts() tea.Cmd {
	catalog, timeout := m.deps.Catalog, m.deps.CatalogTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		products, err := catalog.ListProducts(ctx)
		return productsLoadedMsg{products: products, err: err}
	}
}

func (m Model) submitCheckout(customer domain.CustomerDetails) tea.Cmd {
	orch := m.deps.Checkout
	return func() tea.Msg {
		result, err := orch.Checkout(context.Background(), customer)
		return checkoutDoneMsg{result: result, err: err}
	}
}

func (m Model) lookup(orderID string) tea.Cmd {
	tr := m.deps.Tracker
	return func() tea.Msg {
		view, err := tr.Lookup(context.Background(), orderID)
		return lookupDoneMsg{view: view, err: err}
	}
}

func (m Model) updateStatus(orderID string, status domain.OrderStatus) tea.Cmd {
	tr := m.deps.Tracker
	return func() tea.Msg {
		view, err := tr.UpdateStatus(context.Background(), orderID, status)
		return statusUpdatedMsg{view: view, err: err}
	}
}
