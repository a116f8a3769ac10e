// Package catalog holds the merchant's read-only product listing. The
// session engine consults it for prices and stock; nothing mutates it.
package catalog

import (
	"context"

	checkout "github.com/sumup/agentic-checkout"
)

// Catalog indexes products by id while preserving listing order.
type Catalog struct {
	index map[string]checkout.Product
	order []string
}

// New builds a catalog from the given products. Later duplicates of an id
// replace earlier ones.
func New(products ...checkout.Product) *Catalog {
	c := &Catalog{
		index: make(map[string]checkout.Product, len(products)),
	}
	for _, p := range products {
		if _, seen := c.index[p.ID]; !seen {
			c.order = append(c.order, p.ID)
		}
		c.index[p.ID] = p
	}
	return c
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id string) (checkout.Product, bool) {
	p, ok := c.index[id]
	return p, ok
}

// List returns every product in listing order.
func (c *Catalog) List() []checkout.Product {
	out := make([]checkout.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.index[id])
	}
	return out
}

// ListProducts satisfies [checkout.ProductProvider].
func (c *Catalog) ListProducts(_ context.Context) ([]checkout.Product, error) {
	return c.List(), nil
}
