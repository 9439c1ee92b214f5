package models

import "github.com/shopspring/decimal"

// CartLine is one distinct dish in a session cart.
type CartLine struct {
	DishID    int64 // catalog id of the first add; zero when added by name only
	DishName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Amount returns Quantity * UnitPrice.
func (l CartLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartAggregate is derived from the cart lines and never stored.
type CartAggregate struct {
	TotalItems  int
	TotalAmount decimal.Decimal
}

type CustomerInfo struct {
	Name    string
	Phone   string
	Address string
}

// Labels shown to the customer for missing required fields.
const (
	FieldFullName = "Full Name"
	FieldPhone    = "Phone Number"
	FieldAddress  = "Delivery Address"
)
