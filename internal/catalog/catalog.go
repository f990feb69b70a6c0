// Package catalog holds the read-only product list the bot sells from.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/drstein77/shopbot/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is returned when a catalog entry breaks an invariant.
var ErrInvalidProduct = errors.New("invalid product")

// Catalog is an immutable, ordered set of products.
type Catalog struct {
	products []models.Product
	byID     map[int]int
}

// New validates products and builds a catalog that preserves their order.
func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}

	for _, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: product %d has no name", ErrInvalidProduct, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %d has negative price %s", ErrInvalidProduct, p.ID, p.Price)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidProduct, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}

	return c, nil
}

// DefaultProducts is the built-in catalog.
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99")},
		{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("29.99")},
		{ID: 3, Name: "Keyboard", Price: decimal.RequireFromString("79.99")},
		{ID: 4, Name: "Monitor", Price: decimal.RequireFromString("299.99")},
	}
}

// Default returns a catalog built from DefaultProducts.
func Default() *Catalog {
	c, err := New(DefaultProducts())
	if err != nil {
		panic(err)
	}
	return c
}

// All returns a copy of every product in catalog order.
func (c *Catalog) All() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID looks a product up by id.
func (c *Catalog) ByID(id int) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Names returns product names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.products))
	for _, p := range c.products {
		names = append(names, p.Name)
	}
	return names
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
