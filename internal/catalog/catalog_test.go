package catalog

import (
	"testing"

	"github.com/drstein77/shopbot/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"Laptop", "Mouse", "Keyboard", "Monitor"}, c.Names())

	laptop, ok := c.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "Laptop", laptop.Name)
	assert.True(t, laptop.Price.Equal(decimal.RequireFromString("999.99")))

	_, ok = c.ByID(99)
	assert.False(t, ok)
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	price := decimal.NewFromInt(1)

	tests := []struct {
		name     string
		products []models.Product
	}{
		{"empty name", []models.Product{{ID: 1, Name: "  ", Price: price}}},
		{"negative price", []models.Product{{ID: 1, Name: "Cable", Price: decimal.NewFromInt(-1)}}},
		{"duplicate id", []models.Product{{ID: 1, Name: "A", Price: price}, {ID: 1, Name: "B", Price: price}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.products)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}

func TestNewAcceptsFreeProduct(t *testing.T) {
	c, err := New([]models.Product{{ID: 7, Name: "Sticker", Price: decimal.Zero}})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()

	all := c.All()
	all[0].Name = "Tampered"

	laptop, _ := c.ByID(1)
	assert.Equal(t, "Laptop", laptop.Name)
}
