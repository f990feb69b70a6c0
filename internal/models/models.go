package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Products are immutable once loaded.
type Product struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// PriceLabel renders the price the way every response shows it.
func (p Product) PriceLabel() string {
	return FormatPrice(p.Price)
}

// CartItem is a value copy of a product taken when it was added to a cart.
type CartItem struct {
	Product
	AddedAt time.Time `json:"added_at"`
}

// NewCartItem copies p into a cart item.
func NewCartItem(p Product, at time.Time) CartItem {
	return CartItem{Product: p, AddedAt: at}
}

// Session is the per-user conversational state.
type Session struct {
	UserID      string
	LastProduct *Product
	Cart        []CartItem
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := Session{UserID: s.UserID}
	if s.LastProduct != nil {
		p := *s.LastProduct
		out.LastProduct = &p
	}
	if len(s.Cart) > 0 {
		out.Cart = make([]CartItem, len(s.Cart))
		copy(out.Cart, s.Cart)
	}
	return out
}

// CartLine is one product group in a cart summary.
type CartLine struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartSummary is the read-only view of a cart.
type CartSummary struct {
	UserID    string          `json:"user_id"`
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	Text      string          `json:"text"`
	Buttons   []Button        `json:"buttons"`
}

// FormatPrice renders an amount as "$1234.50".
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
