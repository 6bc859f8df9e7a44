package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/tracker"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case productsLoadedMsg:
		m.productsLoading = false
		m.products, m.productsErr = msg.products, msg.err
		m.status = ""
		if msg.err != nil {
			m.status = "Could not load products. Press r to retry."
		}
		return m, nil

	case checkoutDoneMsg:
		return m.checkoutDone(msg)

	case lookupDoneMsg:
		m.lookingUp = false
		m.trackView = msg.view
		m.trackErr = ""
		if msg.err != nil {
			m.trackErr = lookupMessage(msg.view, msg.err)
		}
		return m, nil

	case statusUpdatedMsg:
		m.lookingUp = false
		m.trackView = msg.view
		m.trackErr = ""
		if msg.err != nil {
			m.trackErr = "Failed to update status: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.deps.Checkout.Cancel()
			m.deps.Tracker.Cancel()
			return m, tea.Quit
		}

		switch m.screen {
		case screenCatalog:
			return m.updateCatalog(msg)
		case screenCart:
			return m.updateCart(msg)
		case screenCheckout:
			return m.updateCheckout(msg)
		case screenTracker:
			return m.updateTracker(msg)
		}
	}

	return m, nil
}

func (m Model) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.products)-1 {
			m.cursor++
		}
	case "enter", "a":
		if m.cursor < len(m.products) {
			p := m.products[m.cursor]
			if !p.InStock {
				m.status = p.Name + " is out of stock"
				return m, nil
			}
			if unit := m.deps.Cart.Currency(); p.Price.Currency != unit {
				m.status = fmt.Sprintf("%s is priced in %s, the store sells in %s", p.Name, p.Price.Currency, unit)
				return m, nil
			}
			m.deps.Cart.AddItem(p, 1)
			m.status = m.deps.Toasts.Last()
		}
	case "r":
		if !m.productsLoading {
			m.productsLoading = true
			m.status = "Loading products..."
			return m, m.loadProducts()
		}
	case "c":
		m.screen, m.cartCursor, m.status = screenCart, 0, ""
	case "t":
		m.screen, m.status = screenTracker, ""
	}
	return m, nil
}

func (m Model) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.deps.Cart.Items()

	switch msg.String() {
	case "esc", "b":
		m.screen, m.status = screenCatalog, ""
	case "up", "k":
		if m.cartCursor > 0 {
			m.cartCursor--
		}
	case "down", "j":
		if m.cartCursor < len(items)-1 {
			m.cartCursor++
		}
	case "d", "x", "delete":
		if m.cartCursor < len(items) {
			m.deps.Cart.RemoveItem(items[m.cartCursor].ProductRef)
			m.status = m.deps.Toasts.Last()
			if m.cartCursor > 0 && m.cartCursor >= len(items)-1 {
				m.cartCursor--
			}
		}
	case "enter", "o":
		if len(items) == 0 {
			m.status = "Your cart is empty"
			return m, nil
		}
		m.screen, m.formErr, m.status = screenCheckout, "", ""
	}
	return m, nil
}

func (m Model) updateCheckout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		// the form is locked until the attempt settles; esc aborts it
		if msg.Type == tea.KeyEsc {
			m.deps.Checkout.Cancel()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.screen = screenCart
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % fieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	case tea.KeyBackspace:
		m.form[m.focus] = dropLastRune(m.form[m.focus])
	case tea.KeySpace:
		m.form[m.focus] += " "
	case tea.KeyRunes:
		m.form[m.focus] += string(msg.Runes)
	case tea.KeyEnter:
		customer := domain.CustomerDetails{
			Name:    m.form[fieldName],
			Phone:   m.form[fieldPhone],
			Address: m.form[fieldAddress],
		}
		if err := customer.Validate(); err != nil {
			m.formErr = "Please fill in all details"
			return m, nil
		}
		m.submitting, m.formErr = true, ""
		return m, m.submitCheckout(customer)
	}
	return m, nil
}

func (m Model) checkoutDone(msg checkoutDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false

	var validationErr *domain.ValidationError
	switch {
	case msg.err == nil:
		m.form = [fieldCount]string{}
		m.focus = 0
		m.screen = screenTracker
		m.trackMode = trackerInputID
		m.trackInput = msg.result.TrackingID
		m.status = "Order placed! Please send the WhatsApp message to confirm."
		m.lookingUp = true
		return m, m.lookup(msg.result.TrackingID)
	case errors.As(msg.err, &validationErr):
		m.formErr = "Please fill in all details"
	case errors.Is(msg.err, domain.ErrCheckoutInProgress):
		m.formErr = "Checkout already in progress"
	default:
		m.formErr = "Failed to place order. Please try again."
	}
	return m, nil
}

func (m Model) updateTracker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		switch m.trackMode {
		case trackerInputID:
			m.deps.Tracker.Cancel()
			m.screen, m.status = screenCatalog, ""
		default:
			// leaving admin mode requires the secret again
			m.deps.AdminGate.Lock()
			m.trackMode, m.secretInput = trackerInputID, ""
		}
		return m, nil
	}

	switch m.trackMode {
	case trackerInputSecret:
		switch msg.Type {
		case tea.KeyBackspace:
			m.secretInput = dropLastRune(m.secretInput)
		case tea.KeyRunes:
			m.secretInput += string(msg.Runes)
		case tea.KeyEnter:
			if m.deps.AdminGate.Unlock(m.secretInput) {
				m.trackMode, m.trackErr = trackerAdmin, ""
				m.statusCursor = max(m.trackView.Order.Status.Step()-1, 0)
			} else {
				m.trackMode, m.trackErr = trackerInputID, "Wrong admin secret"
			}
			m.secretInput = ""
		}
		return m, nil

	case trackerAdmin:
		statuses := domain.Statuses()
		switch msg.String() {
		case "left", "h":
			m.statusCursor = (m.statusCursor + len(statuses) - 1) % len(statuses)
		case "right", "l":
			m.statusCursor = (m.statusCursor + 1) % len(statuses)
		case "enter":
			if m.lookingUp || m.trackView.State != tracker.StateFound {
				return m, nil
			}
			m.lookingUp = true
			return m, m.updateStatus(m.trackView.OrderID, statuses[m.statusCursor])
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyBackspace:
		m.trackInput = dropLastRune(m.trackInput)
	case tea.KeyRunes:
		m.trackInput += string(msg.Runes)
	case tea.KeyCtrlA:
		m.trackMode, m.secretInput = trackerInputSecret, ""
		if m.deps.AdminGate.Unlocked() {
			m.trackMode = trackerAdmin
		}
	case tea.KeyEnter:
		id := strings.TrimSpace(m.trackInput)
		if id == "" || m.lookingUp {
			return m, nil
		}
		m.lookingUp, m.trackErr = true, ""
		m.trackView = tracker.View{OrderID: id, State: tracker.StateLoading}
		return m, m.lookup(id)
	}
	return m, nil
}

func lookupMessage(view tracker.View, err error) string {
	if msg := tracker.Message(view); msg != "" {
		return msg
	}
	return err.Error()
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
