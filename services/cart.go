package services

import (
	"catering-menu/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrIndexOutOfRange = errors.New("cart index out of range")
	ErrLineMismatch    = errors.New("cart line does not hold the expected dish")
)

// Cart holds at most one line per dish name, in insertion order.
type Cart struct {
	lines []models.CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add merges into an existing line with the same name or appends a new one.
// The unit price of an existing line is kept.
func (c *Cart) Add(dishName string, unitPrice decimal.Decimal, quantity int) error {
	return c.AddLine(models.CartLine{DishName: dishName, Quantity: quantity, UnitPrice: unitPrice})
}

// AddLine is Add with the dish id recorded on a new line.
func (c *Cart) AddLine(line models.CartLine) error {
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.lines {
		if c.lines[i].DishName == line.DishName {
			c.lines[i].Quantity += line.Quantity
			return nil
		}
	}
	c.lines = append(c.lines, line)
	return nil
}

// RemoveAt removes and returns the line at index.
func (c *Cart) RemoveAt(index int) (models.CartLine, error) {
	if index < 0 || index >= len(c.lines) {
		return models.CartLine{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, len %d", index, len(c.lines))
	}
	removed := c.lines[index]
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return removed, nil
}

// RemoveDishAt removes the line at index only if it still holds dishID.
// A removal issued against an older view of the cart fails with ErrLineMismatch.
func (c *Cart) RemoveDishAt(index int, dishID int64) (models.CartLine, error) {
	if index >= 0 && index < len(c.lines) && c.lines[index].DishID != dishID {
		return models.CartLine{}, errors.Wrapf(ErrLineMismatch, "index %d holds dish %d, not %d", index, c.lines[index].DishID, dishID)
	}
	return c.RemoveAt(index)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Aggregate is recomputed from the lines on every call.
func (c *Cart) Aggregate() models.CartAggregate {
	return AggregateLines(c.lines)
}

func AggregateLines(lines []models.CartLine) models.CartAggregate {
	agg := models.CartAggregate{TotalAmount: decimal.Zero}
	for _, l := range lines {
		agg.TotalItems += l.Quantity
		agg.TotalAmount = agg.TotalAmount.Add(l.Amount())
	}
	return agg
}
