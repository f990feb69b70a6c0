package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Laptop", "laptop"},
		{"  Añadir   al CARRITO ", "anadir al carrito"},
		{"Catálogo", "catalogo"},
		{"ver\tcarrito\n", "ver carrito"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 6, RuneLen("añadir"))
}
