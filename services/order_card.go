package services

import (
	"fmt"
	"strconv"
	"strings"

	"catering-menu/models"
)

// OrderView is everything a presentation layer needs to draw the cart and
// ordering sections. It is recomputed from the session after every action.
type OrderView struct {
	Lines       []models.CartLine
	Aggregate   models.CartAggregate
	Customer    models.CustomerInfo
	Missing     []string
	Confirmed   bool
	LinkEnabled bool
	Message     string
	Link        string
}

func (v OrderView) CartEmpty() bool {
	return len(v.Lines) == 0
}

// Render builds the view of s. The message and link are only produced when
// the cart is not empty and the details were confirmed with nothing missing.
func Render(s *Session, link OrderLink, currency string) OrderView {
	v := OrderView{
		Lines:     s.Cart.Lines(),
		Aggregate: s.Cart.Aggregate(),
		Customer:  s.Customer.Info(),
		Missing:   s.Customer.Validate(),
		Confirmed: s.Confirmed,
	}
	v.LinkEnabled = v.Confirmed && len(v.Missing) == 0 && !v.CartEmpty()
	if v.LinkEnabled {
		v.Message = BuildOrderMessage(v.Aggregate, v.Lines, v.Customer, currency)
		v.Link = link.URL(v.Message)
	}
	return v
}

// maxRemoveButtons keeps the cart keyboard under Telegram's inline button limit.
// Lines past it get a button once earlier lines are removed.
const maxRemoveButtons = 90

// maxCardTextRunes keeps card text under Telegram's 4096 character message limit.
const maxCardTextRunes = 4000

// truncateCardText cuts text to maxCardTextRunes, marking the cut with an ellipsis line.
func truncateCardText(text string) string {
	r := []rune(text)
	if len(r) <= maxCardTextRunes {
		return text
	}
	return string(r[:maxCardTextRunes-2]) + "\n…"
}

// OrderCardButton is one inline button (text + callback_data or url).
type OrderCardButton struct {
	Text         string
	CallbackData string
	URL          string // if set, use as URL button instead of callback
}

// OrderCardContent is the text and optional inline keyboard for a card.
type OrderCardContent struct {
	Text    string
	Buttons [][]OrderCardButton
}

// BuildCartCard returns the cart card with a remove button per line, up to maxRemoveButtons.
func BuildCartCard(v OrderView, currency string) OrderCardContent {
	if v.CartEmpty() {
		return OrderCardContent{
			Text:    "🛒 Your cart is empty. Add some delicious dishes from our menu.",
			Buttons: [][]OrderCardButton{{{Text: "🍽️ Menu", CallbackData: "menu"}}},
		}
	}
	var sb strings.Builder
	sb.WriteString("🛒 Your Cart\n")
	fmt.Fprintf(&sb, "Total Items: %d | Total Amount: %s\n\n", v.Aggregate.TotalItems, FormatAmount(currency, v.Aggregate.TotalAmount))

	var buttons [][]OrderCardButton
	for i, l := range v.Lines {
		fmt.Fprintf(&sb, "%d. %s — Qty: %d — %s each\n", i+1, l.DishName, l.Quantity, FormatAmount(currency, l.UnitPrice))
		if i >= maxRemoveButtons {
			continue
		}
		buttons = append(buttons, []OrderCardButton{{
			Text:         "❌ Remove " + l.DishName,
			CallbackData: "rm:" + strconv.Itoa(i) + ":" + strconv.FormatInt(l.DishID, 10),
		}})
	}
	fmt.Fprintf(&sb, "\n💰 Cart Total: %s", FormatAmount(currency, v.Aggregate.TotalAmount))

	buttons = append(buttons,
		[]OrderCardButton{
			{Text: "🗑 Clear", CallbackData: "clear"},
			{Text: "📝 Checkout", CallbackData: "checkout"},
		},
		[]OrderCardButton{{Text: "🍽️ Menu", CallbackData: "menu"}},
	)
	return OrderCardContent{Text: truncateCardText(sb.String()), Buttons: buttons}
}

// BuildOrderCard returns the ordering card: the preview plus a URL button when
// the link is enabled, otherwise what is still needed.
func BuildOrderCard(v OrderView) OrderCardContent {
	switch {
	case v.CartEmpty():
		return OrderCardContent{
			Text:    "🛒 Add items to your cart first to place an order",
			Buttons: [][]OrderCardButton{{{Text: "🍽️ Menu", CallbackData: "menu"}}},
		}
	case !v.Confirmed:
		return OrderCardContent{
			Text: fmt.Sprintf("📝 Your Information\n\nName: %s\nPhone: %s\nAddress: %s\n\nConfirm to get your order link.",
				v.Customer.Name, v.Customer.Phone, v.Customer.Address),
			Buttons: [][]OrderCardButton{
				{{Text: "✅ Confirm", CallbackData: "info_ok"}},
				{{Text: "✏️ Edit", CallbackData: "checkout"}},
			},
		}
	case len(v.Missing) > 0:
		return OrderCardContent{
			Text:    "❌ Please fill in all required information: " + strings.Join(v.Missing, ", "),
			Buttons: [][]OrderCardButton{{{Text: "📝 Enter details", CallbackData: "checkout"}}},
		}
	}
	return OrderCardContent{
		Text: truncateCardText("📋 Preview Your Order\n\n" + v.Message),
		Buttons: [][]OrderCardButton{
			{{Text: "📱 Send Order", URL: v.Link}},
			{{Text: "✏️ Edit details", CallbackData: "checkout"}, {Text: "🛒 Cart", CallbackData: "cart"}},
		},
	}
}
