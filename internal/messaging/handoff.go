// Package messaging renders a new order into a text message and hands it to an
// external channel. Delivery is never confirmed.
package messaging

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const deepLinkBase = "https://wa.me/"

type Handoff struct {
	channel     port.MessagingChannel
	destination string
	logger      *zap.Logger
}

func NewHandoff(channel port.MessagingChannel, destination string, logger *zap.Logger) *Handoff {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handoff{
		channel:     channel,
		destination: destination,
		logger:      logger,
	}
}

// Send formats the order and opens the channel. Channel failures are logged only.
func (h *Handoff) Send(ctx context.Context, orderID string, customer domain.CustomerDetails, items []domain.OrderItem, total domain.Money) {
	text := FormatOrderMessage(orderID, customer, items, total)

	if err := h.channel.Open(ctx, h.destination, text); err != nil {
		h.logger.Warn("messaging handoff failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	h.logger.Info("messaging handoff dispatched", zap.String("order_id", orderID))
}

func FormatOrderMessage(orderID string, customer domain.CustomerDetails, items []domain.OrderItem, total domain.Money) string {
	var b strings.Builder

	b.WriteString("*New Bike Part Order!*\n\n")
	fmt.Fprintf(&b, "*Order ID:* %s\n", orderID)
	b.WriteString("*Customer Details:*\n")
	fmt.Fprintf(&b, "Name: %s\n", customer.Name)
	fmt.Fprintf(&b, "Phone: %s\n", customer.Phone)
	fmt.Fprintf(&b, "Address: %s\n\n", customer.Address)
	b.WriteString("*Order Summary:*\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %d x %s - %s\n", item.Quantity, item.Name, item.LineTotal())
	}
	fmt.Fprintf(&b, "\n*Total Amount: %s*", total)
	b.WriteString("\n\n(I will pay via UPI/Cash upon confirmation)")

	return b.String()
}

// DeepLink builds a pre-addressed chat link. Spaces are encoded as %20, not '+'.
func DeepLink(phone, text string) string {
	return deepLinkBase + url.PathEscape(phone) + "?text=" + EncodeText(text)
}

func EncodeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
