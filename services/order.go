package services

import (
	"fmt"
	"net/url"
	"strings"

	"catering-menu/models"

	"github.com/shopspring/decimal"
)

const (
	orderHeader  = "🍱 *NEW CATERING ORDER* 🍱"
	orderClosing = "Please confirm this order. Thank you! 🙏"
)

var orderSeparator = strings.Repeat("─", 25)

// FormatAmount renders an amount with the currency symbol, e.g. "₹570".
func FormatAmount(currency string, amount decimal.Decimal) string {
	return currency + amount.String()
}

// BuildOrderMessage renders the order text. It is a pure function of its inputs.
func BuildOrderMessage(agg models.CartAggregate, lines []models.CartLine, info models.CustomerInfo, currency string) string {
	out := []string{
		orderHeader,
		"",
		"*Customer Details:*",
		"👤 Name: " + info.Name,
		"📞 Phone: " + info.Phone,
		"🏠 Address: " + info.Address,
		"",
		"*Order Summary:*",
		orderSeparator,
	}
	for _, l := range lines {
		out = append(out, fmt.Sprintf("• %d x %s = %s", l.Quantity, l.DishName, FormatAmount(currency, l.Amount())))
	}
	out = append(out,
		orderSeparator,
		fmt.Sprintf("*💰 TOTAL AMOUNT: %s*", FormatAmount(currency, agg.TotalAmount)),
		"",
		orderClosing,
	)
	return strings.Join(out, "\n")
}

// EncodeMessage percent-encodes text for a query parameter value (spaces as %20).
func EncodeMessage(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// OrderLink builds deep links of the form <ServiceURL>/<Recipient>?text=<message>.
type OrderLink struct {
	ServiceURL string
	Recipient  string
}

func (l OrderLink) URL(message string) string {
	return fmt.Sprintf("%s/%s?text=%s",
		strings.TrimRight(l.ServiceURL, "/"),
		url.PathEscape(l.Recipient),
		EncodeMessage(message),
	)
}
