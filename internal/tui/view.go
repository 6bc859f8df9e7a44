package tui

import (
	"fmt"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/tracker"
)

func (m Model) View() string {
	b := &strings.Builder{}

	fmt.Fprintf(b, "Bike Parts Store   [cart: %d]\n\n", m.deps.Cart.ItemCount())

	switch m.screen {
	case screenCatalog:
		m.viewCatalog(b)
	case screenCart:
		m.viewCart(b)
	case screenCheckout:
		m.viewCheckout(b)
	case screenTracker:
		m.viewTracker(b)
	}

	if m.status != "" {
		fmt.Fprintf(b, "\n%s\n", m.status)
	}
	return b.String()
}

func (m Model) viewCatalog(b *strings.Builder) {
	switch {
	case m.productsLoading:
		fmt.Fprintln(b, "Loading products...")
	case m.productsErr != nil:
		fmt.Fprintln(b, "Products are unavailable right now.")
	case len(m.products) == 0:
		fmt.Fprintln(b, "No products available.")
	}

	for i, p := range m.products {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		stock := ""
		if !p.InStock {
			stock = " (out of stock)"
		}
		fmt.Fprintf(b, " %s %-30s %14s  %s%s\n", marker, p.Name, p.Price, p.Category, stock)
	}

	fmt.Fprintln(b, "\nup/down select, enter add to cart, c cart, t track order, r reload, q quit")
}

func (m Model) viewCart(b *strings.Builder) {
	items := m.deps.Cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(b, "Your cart is empty.")
		fmt.Fprintln(b, "\nesc back")
		return
	}

	for i, item := range items {
		marker := " "
		if i == m.cartCursor {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %d x %-26s %14s\n", marker, item.Quantity, item.Name, item.LineTotal())
	}
	fmt.Fprintf(b, "\nTotal: %s\n", m.deps.Cart.TotalPrice())
	fmt.Fprintln(b, "\nup/down select, d remove, enter checkout, esc back")
}

func (m Model) viewCheckout(b *strings.Builder) {
	labels := [fieldCount]string{"Name", "Phone", "Address"}

	fmt.Fprintln(b, "Checkout")
	for i, label := range labels {
		cursor := " "
		if i == m.focus && !m.submitting {
			cursor = ">"
		}
		fmt.Fprintf(b, " %s %-8s %s\n", cursor, label+":", m.form[i])
	}

	fmt.Fprintf(b, "\nTotal: %s\n", m.deps.Cart.TotalPrice())

	if m.submitting {
		fmt.Fprintln(b, "\n[ Placing order... ]  esc cancel")
	} else {
		fmt.Fprintln(b, "\n[ Place order ]  tab next field, enter submit, esc back")
	}
	if m.formErr != "" {
		fmt.Fprintf(b, "\n%s\n", m.formErr)
	}
}

func (m Model) viewTracker(b *strings.Builder) {
	fmt.Fprintln(b, "Track your order")
	fmt.Fprintf(b, "Order ID: %s\n\n", m.trackInput)

	view := m.trackView
	switch {
	case view.State == tracker.StateLoading:
		fmt.Fprintln(b, tracker.Message(view))
	case view.State == tracker.StateFound:
		writeOrder(b, view.Order)
	case m.trackErr == "" && view.State != tracker.StateIdle:
		fmt.Fprintln(b, tracker.Message(view))
	}

	if m.trackErr != "" {
		fmt.Fprintf(b, "\n%s\n", m.trackErr)
	}

	switch m.trackMode {
	case trackerInputSecret:
		fmt.Fprintf(b, "\nAdmin secret: %s\n", strings.Repeat("*", len([]rune(m.secretInput))))
		fmt.Fprintln(b, "enter unlock, esc cancel")
	case trackerAdmin:
		fmt.Fprint(b, "\nSet status: ")
		for i, s := range domain.Statuses() {
			if i == m.statusCursor {
				fmt.Fprintf(b, "[%s] ", s)
			} else {
				fmt.Fprintf(b, " %s  ", s)
			}
		}
		fmt.Fprintln(b, "\nleft/right choose, enter update, esc done")
	default:
		fmt.Fprintln(b, "\ntype an order id, enter track, ctrl+a admin, esc back")
	}
}

func writeOrder(b *strings.Builder, order domain.Order) {
	t := tracker.Render(order.Status)

	fmt.Fprintf(b, "%s %s\n", t.Icon, t.Label)
	for i, s := range t.Steps {
		mark := "o"
		if i < t.Step {
			mark = "*"
		}
		fmt.Fprintf(b, " %s %s", mark, s)
	}
	fmt.Fprintln(b)
	if t.Hint != "" {
		fmt.Fprintf(b, "%s\n", t.Hint)
	}

	fmt.Fprintf(b, "\nPlaced: %s\n", order.CreatedAt.Local().Format("02 Jan 2006 15:04"))
	fmt.Fprintf(b, "Deliver to: %s, %s (%s)\n", order.Customer.Name, order.Customer.Address, order.Customer.Phone)
	for _, item := range order.Items {
		fmt.Fprintf(b, " %d x %-26s %14s\n", item.Quantity, item.Name, item.LineTotal())
	}
	fmt.Fprintf(b, "Total: %s\n", order.TotalPrice)
}
