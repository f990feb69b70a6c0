// Package cart owns every cart mutation. Text commands, buttons and any
// future entry point go through the same Engine methods, so they produce the
// same state changes and the same responses.
package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/drstein77/shopbot/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNoProductSelected = errors.New("no product selected")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotInCart         = errors.New("product not in cart")
)

// Store is the session storage the engine reads and mutates.
type Store interface {
	Session(userID string) (models.Session, error)
	Update(userID string, fn func(*models.Session) error) error
}

// Resolver looks products up by id.
type Resolver interface {
	ByID(id int) (models.Product, error)
}

type Log interface {
	Info(string, ...zap.Field)
}

type Metrics interface {
	ObserveCartChange(op string)
}

// AddResult is the outcome of a successful add.
type AddResult struct {
	Product  models.Product
	Response models.Response
}

// RemoveResult is the outcome of a successful remove.
type RemoveResult struct {
	Product  models.Product
	Response models.Response
}

// Receipt is the outcome of a checkout.
type Receipt struct {
	Summary  models.CartSummary
	Response models.Response
}

// Engine implements add, view, remove, clear and checkout over a Store.
type Engine struct {
	store    Store
	resolver Resolver
	log      Log
	metrics  Metrics
	now      func() time.Time
}

// NewEngine wires an engine. metrics may be nil.
func NewEngine(store Store, resolver Resolver, log Log, metrics Metrics) *Engine {
	return &Engine{
		store:    store,
		resolver: resolver,
		log:      log,
		metrics:  metrics,
		now:      time.Now,
	}
}

// AddProductToCart appends a copy of a product to the user's cart. With a
// productID the product is resolved from the catalog; without one the
// session's last selected product is used. On success the product also
// becomes the last selected one. On failure the session is not modified.
//
// Errors: resolver errors for unknown ids, ErrNoProductSelected.
func (e *Engine) AddProductToCart(userID string, productID *int) (AddResult, error) {
	var resolved *models.Product
	if productID != nil {
		p, err := e.resolver.ByID(*productID)
		if err != nil {
			return AddResult{}, fmt.Errorf("add to cart: %w", err)
		}
		resolved = &p
	}

	var added models.Product
	err := e.store.Update(userID, func(s *models.Session) error {
		switch {
		case resolved != nil:
			added = *resolved
		case s.LastProduct != nil:
			added = *s.LastProduct
		default:
			return ErrNoProductSelected
		}

		s.Cart = append(s.Cart, models.NewCartItem(added, e.now()))
		last := added
		s.LastProduct = &last
		return nil
	})
	if err != nil {
		return AddResult{}, fmt.Errorf("add to cart: %w", err)
	}

	e.observe("add")
	e.log.Info("product added to cart",
		zap.String("user_id", userID),
		zap.Int("product_id", added.ID),
	)

	return AddResult{Product: added, Response: AddedResponse(added)}, nil
}

// ViewCart summarizes the user's cart without modifying it.
func (e *Engine) ViewCart(userID string) (models.CartSummary, error) {
	s, err := e.store.Session(userID)
	if err != nil {
		return models.CartSummary{}, fmt.Errorf("view cart: %w", err)
	}
	return Summarize(s), nil
}

// FindLastSelectedProduct returns the session's last selected product.
func (e *Engine) FindLastSelectedProduct(userID string) (models.Product, bool) {
	s, err := e.store.Session(userID)
	if err != nil || s.LastProduct == nil {
		return models.Product{}, false
	}
	return *s.LastProduct, true
}

// SelectProduct records productID as the user's last selected product.
// The id must exist in the catalog at the time of selection.
func (e *Engine) SelectProduct(userID string, productID int) (models.Product, error) {
	p, err := e.resolver.ByID(productID)
	if err != nil {
		return models.Product{}, fmt.Errorf("select product: %w", err)
	}

	err = e.store.Update(userID, func(s *models.Session) error {
		selected := p
		s.LastProduct = &selected
		return nil
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// RemoveProductFromCart removes one unit of a product, the most recently
// added one. Without a productID the last selected product is used.
//
// Errors: ErrNoProductSelected, ErrNotInCart.
func (e *Engine) RemoveProductFromCart(userID string, productID *int) (RemoveResult, error) {
	var removed models.Product
	err := e.store.Update(userID, func(s *models.Session) error {
		var id int
		switch {
		case productID != nil:
			id = *productID
		case s.LastProduct != nil:
			id = s.LastProduct.ID
		default:
			return ErrNoProductSelected
		}

		for i := len(s.Cart) - 1; i >= 0; i-- {
			if s.Cart[i].ID == id {
				removed = s.Cart[i].Product
				s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
				return nil
			}
		}
		return ErrNotInCart
	})
	if err != nil {
		return RemoveResult{}, fmt.Errorf("remove from cart: %w", err)
	}

	e.observe("remove")
	e.log.Info("product removed from cart",
		zap.String("user_id", userID),
		zap.Int("product_id", removed.ID),
	)

	return RemoveResult{Product: removed, Response: RemovedResponse(removed)}, nil
}

// ClearCart empties the user's cart. The last selected product is kept.
func (e *Engine) ClearCart(userID string) (models.Response, error) {
	err := e.store.Update(userID, func(s *models.Session) error {
		s.Cart = nil
		return nil
	})
	if err != nil {
		return models.Response{}, fmt.Errorf("clear cart: %w", err)
	}

	e.observe("clear")
	return ClearedResponse(), nil
}

// Checkout totals the cart, then empties it and forgets the last selected
// product. No payment is taken.
//
// Errors: ErrEmptyCart.
func (e *Engine) Checkout(userID string) (Receipt, error) {
	var summary models.CartSummary
	err := e.store.Update(userID, func(s *models.Session) error {
		if len(s.Cart) == 0 {
			return ErrEmptyCart
		}
		summary = Summarize(*s)
		s.Cart = nil
		s.LastProduct = nil
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("checkout: %w", err)
	}

	e.observe("checkout")
	e.log.Info("checkout completed",
		zap.String("user_id", userID),
		zap.Int("items", summary.ItemCount),
		zap.String("total", summary.Total.StringFixed(2)),
	)

	return Receipt{Summary: summary, Response: CheckoutResponse(summary.Total)}, nil
}

// Summarize groups a session's cart by product id in first-added order.
func Summarize(s models.Session) models.CartSummary {
	summary := models.CartSummary{
		UserID:    s.UserID,
		Lines:     []models.CartLine{},
		ItemCount: len(s.Cart),
		Total:     decimal.Zero,
	}

	index := make(map[int]int)
	for _, item := range s.Cart {
		if i, ok := index[item.ID]; ok {
			summary.Lines[i].Quantity++
			continue
		}
		index[item.ID] = len(summary.Lines)
		summary.Lines = append(summary.Lines, models.CartLine{Product: item.Product, Quantity: 1})
	}

	for i := range summary.Lines {
		line := &summary.Lines[i]
		line.Subtotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		summary.Total = summary.Total.Add(line.Subtotal)
	}

	summary.Text = renderSummary(summary)
	summary.Buttons = NavigationButtons()
	return summary
}

func (e *Engine) observe(op string) {
	if e.metrics != nil {
		e.metrics.ObserveCartChange(op)
	}
}
