package services

import (
	"context"
	"fmt"

	"catering-menu/models"

	"github.com/pkg/errors"
)

// ErrCatalogNotFound is returned when the catalog data source does not exist.
var ErrCatalogNotFound = errors.New("catalog not found")

// CatalogReadError reports a catalog that exists but cannot be used.
type CatalogReadError struct {
	Detail string
}

func (e *CatalogReadError) Error() string {
	return "catalog read error: " + e.Detail
}

func readErrorf(format string, args ...interface{}) error {
	return &CatalogReadError{Detail: fmt.Sprintf(format, args...)}
}

// CatalogSource produces the raw dish list. Implementations: FileCatalogSource, PostgresCatalogSource.
type CatalogSource interface {
	Load(ctx context.Context) ([]models.Dish, error)
}

// Catalog is the read-only menu shared by every session.
type Catalog struct {
	dishes     []models.Dish
	byID       map[int64]int
	categories []string
}

// LoadCatalog loads and validates the whole catalog; any failure means no catalog at all.
func LoadCatalog(ctx context.Context, src CatalogSource) (*Catalog, error) {
	dishes, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(dishes)
}

func NewCatalog(dishes []models.Dish) (*Catalog, error) {
	if len(dishes) == 0 {
		return nil, readErrorf("catalog has no dishes")
	}
	c := &Catalog{
		dishes: make([]models.Dish, len(dishes)),
		byID:   make(map[int64]int, len(dishes)),
	}
	copy(c.dishes, dishes)
	seenCat := map[string]bool{}
	for i, d := range c.dishes {
		if _, dup := c.byID[d.ID]; dup {
			return nil, readErrorf("duplicate dish id %d", d.ID)
		}
		if d.Name == "" {
			return nil, readErrorf("dish %d has no name", d.ID)
		}
		if d.Price.IsNegative() {
			return nil, readErrorf("dish %d has negative price %s", d.ID, d.Price)
		}
		c.byID[d.ID] = i
		if !seenCat[d.Category] {
			seenCat[d.Category] = true
			c.categories = append(c.categories, d.Category)
		}
	}
	return c, nil
}

// Dishes returns the catalog in source order.
func (c *Catalog) Dishes() []models.Dish {
	out := make([]models.Dish, len(c.dishes))
	copy(out, c.dishes)
	return out
}

func (c *Catalog) Dish(id int64) (models.Dish, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Dish{}, false
	}
	return c.dishes[i], true
}

// Categories returns categories in first-seen order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) ByCategory(category string) []models.Dish {
	var out []models.Dish
	for _, d := range c.dishes {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.dishes)
}
