package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSessionCloneIsDeep(t *testing.T) {
	laptop := Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99")}
	orig := Session{
		UserID:      "u1",
		LastProduct: &laptop,
		Cart:        []CartItem{NewCartItem(laptop, time.Now())},
	}

	clone := orig.Clone()
	clone.LastProduct.Name = "changed"
	clone.Cart[0].Name = "changed"
	clone.Cart = append(clone.Cart, NewCartItem(laptop, time.Now()))

	assert.Equal(t, "Laptop", orig.LastProduct.Name)
	assert.Equal(t, "Laptop", orig.Cart[0].Name)
	assert.Len(t, orig.Cart, 1)
	assert.Equal(t, "Laptop", laptop.Name)
}

func TestActionToken(t *testing.T) {
	assert.Equal(t, "btn_view_cart", NewAction(ActionViewCart).Token())
	assert.Equal(t, "btn_add_3", NewProductAction(ActionAdd, 3).Token())
	assert.Equal(t, "btn_select_12", NewProductAction(ActionSelect, 12).Token())
}

func TestResponseLabels(t *testing.T) {
	r := Response{Buttons: []Button{
		NewButton("Ver carrito", NewAction(ActionViewCart)),
		NewButton("Continuar comprando", NewAction(ActionBrowse)),
	}}

	assert.Equal(t, []string{"Ver carrito", "Continuar comprando"}, r.Labels())
	assert.False(t, r.Failed())
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$1029.98", FormatPrice(decimal.RequireFromString("1029.98")))
	assert.Equal(t, "$5.00", FormatPrice(decimal.NewFromInt(5)))
}
