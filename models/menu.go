package models

import "github.com/shopspring/decimal"

// Dish is one row of the catalog. Immutable once loaded.
type Dish struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Image       string // path or URL as written in the catalog
}
