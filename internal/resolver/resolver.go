// Package resolver finds catalog products by id or by a fuzzy name query.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/drstein77/shopbot/internal/models"
	"github.com/drstein77/shopbot/internal/textnorm"
)

// MinPartialQuery is the shortest query matched as a partial product name.
// Shorter fragments ("la", "el") only match when they contain a whole name.
const MinPartialQuery = 3

var (
	ErrUnknownProduct   = errors.New("unknown product")
	ErrAmbiguousProduct = errors.New("ambiguous product")
)

// AmbiguousError lists every product a name query matched.
type AmbiguousError struct {
	Query      string
	Candidates []models.Product
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: %q matches %d products", ErrAmbiguousProduct, e.Query, len(e.Candidates))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguousProduct
}

// Catalog is the read side the resolver needs.
type Catalog interface {
	All() []models.Product
	ByID(id int) (models.Product, bool)
}

// Resolver is the single lookup path for both search and add-to-cart.
type Resolver struct {
	catalog Catalog
}

// New returns a resolver over catalog.
func New(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// ByID returns the product with id or ErrUnknownProduct.
func (r *Resolver) ByID(id int) (models.Product, error) {
	p, ok := r.catalog.ByID(id)
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrUnknownProduct)
	}
	return p, nil
}

// ByName matches query against product names, case- and accent-insensitively.
// Names mentioned in full inside the query take precedence; otherwise names
// containing the query are used. One match is returned as is, several yield
// an *AmbiguousError with all candidates in catalog order.
func (r *Resolver) ByName(query string) (models.Product, error) {
	q := textnorm.Fold(query)
	if q == "" {
		return models.Product{}, fmt.Errorf("empty query: %w", ErrUnknownProduct)
	}

	var mentioned, partial []models.Product
	for _, p := range r.catalog.All() {
		name := textnorm.Fold(p.Name)
		switch {
		case strings.Contains(q, name):
			mentioned = append(mentioned, p)
		case textnorm.RuneLen(q) >= MinPartialQuery && strings.Contains(name, q):
			partial = append(partial, p)
		}
	}

	matches := mentioned
	if len(matches) == 0 {
		matches = partial
	}

	switch len(matches) {
	case 0:
		return models.Product{}, fmt.Errorf("%q: %w", query, ErrUnknownProduct)
	case 1:
		return matches[0], nil
	default:
		return models.Product{}, &AmbiguousError{Query: query, Candidates: matches}
	}
}
