package resolver

import (
	"errors"
	"testing"

	"github.com/drstein77/shopbot/internal/catalog"
	"github.com/drstein77/shopbot/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByID(t *testing.T) {
	r := New(catalog.Default())

	p, err := r.ByID(2)
	require.NoError(t, err)
	assert.Equal(t, "Mouse", p.Name)

	_, err = r.ByID(42)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestByNameSingleMatch(t *testing.T) {
	r := New(catalog.Default())

	tests := []struct {
		query string
		want  string
	}{
		{"laptop", "Laptop"},
		{"LAPTOP", "Laptop"},
		{"quiero un mouse barato", "Mouse"},
		{"key", "Keyboard"},
		{"monit", "Monitor"},
	}

	for _, tt := range tests {
		query, want := tt.query, tt.want
		t.Run(query, func(t *testing.T) {
			p, err := r.ByName(query)
			require.NoError(t, err)
			assert.Equal(t, want, p.Name)
		})
	}
}

func TestByNameAmbiguous(t *testing.T) {
	r := New(catalog.Default())

	_, err := r.ByName("mouse y monitor")
	require.ErrorIs(t, err, ErrAmbiguousProduct)

	var amb *AmbiguousError
	require.True(t, errors.As(err, &amb))
	require.Len(t, amb.Candidates, 2)
	assert.Equal(t, "Mouse", amb.Candidates[0].Name)
	assert.Equal(t, "Monitor", amb.Candidates[1].Name)
}

func TestByNameSharedSubstringReturnsAllCandidates(t *testing.T) {
	c, err := catalog.New([]models.Product{
		{ID: 1, Name: "USB Cable", Price: decimal.NewFromInt(5)},
		{ID: 2, Name: "HDMI Cable", Price: decimal.NewFromInt(9)},
		{ID: 3, Name: "Laptop", Price: decimal.NewFromInt(900)},
	})
	require.NoError(t, err)
	r := New(c)

	_, err = r.ByName("cable")
	var amb *AmbiguousError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, "cable", amb.Query)
	assert.Len(t, amb.Candidates, 2)

	p, err := r.ByName("hdmi cable")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ID)
}

func TestByNameNotFound(t *testing.T) {
	r := New(catalog.Default())

	for _, query := range []string{"", "   ", "tablet", "la", "o"} {
		t.Run(query, func(t *testing.T) {
			_, err := r.ByName(query)
			assert.ErrorIs(t, err, ErrUnknownProduct)
		})
	}
}
