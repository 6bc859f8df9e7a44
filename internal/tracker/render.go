package tracker

import "github.com/nikolayk812/storefront/internal/domain"

type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneOrange  Tone = "orange"
	ToneBlue    Tone = "blue"
	TonePurple  Tone = "purple"
	ToneGreen   Tone = "green"
)

// Treatment is the fixed display for a status. Step is 1-based within Steps, 0 when unknown.
type Treatment struct {
	Label string
	Tone  Tone
	Icon  string
	Step  int
	Steps []domain.OrderStatus
	Hint  string
}

func Render(status domain.OrderStatus) Treatment {
	t := Treatment{
		Label: string(status),
		Tone:  ToneNeutral,
		Icon:  "?",
		Step:  status.Step(),
		Steps: domain.Statuses(),
	}

	switch status {
	case domain.OrderStatusProcessing:
		t.Tone, t.Icon = ToneOrange, "📦"
		t.Hint = "Waiting for WhatsApp confirmation from your side."
	case domain.OrderStatusShipped:
		t.Tone, t.Icon = ToneBlue, "🚚"
	case domain.OrderStatusOutForDelivery:
		t.Tone, t.Icon = TonePurple, "🚚"
	case domain.OrderStatusDelivered:
		t.Tone, t.Icon = ToneGreen, "🏠"
	}

	return t
}

// Message is the user-facing text for a view that is not StateFound.
func Message(v View) string {
	switch v.State {
	case StateLoading:
		return "Loading your order details..."
	case StateNotFound:
		return "Order not found. Please check the order ID."
	case StateTransportError:
		return "Could not reach the order service. Please try again."
	default:
		return ""
	}
}
