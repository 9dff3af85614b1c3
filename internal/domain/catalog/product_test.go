package catalog

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidates(t *testing.T) {
	_, err := New("", CategoryGuppies, "", decimal.NewFromInt(1), 1)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = New("Red Guppy", CategoryGuppies, "", decimal.NewFromInt(-1), 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = New("Red Guppy", CategoryGuppies, "", decimal.NewFromInt(1), -1)
	assert.ErrorIs(t, err, ErrInvalidStock)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestDeductNeverGoesNegative(t *testing.T) {
	p, err := New("Red Guppy", CategoryGuppies, "", decimal.RequireFromString("5.99"), 10)
	require.NoError(t, err)

	require.NoError(t, p.Deduct(7))
	assert.Equal(t, 3, p.Stock)

	err = p.Deduct(4)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 3, p.Stock)

	assert.ErrorIs(t, p.Deduct(0), ErrInvalidQuantity)
	require.NoError(t, p.Deduct(3))
	assert.False(t, p.InStock())
}

func TestRestockHasNoUpperBound(t *testing.T) {
	p, err := New("Heater", CategoryEquipment, "", decimal.RequireFromString("19.99"), 1)
	require.NoError(t, err)

	require.NoError(t, p.Restock(5))
	assert.Equal(t, 6, p.Stock)
	assert.ErrorIs(t, p.Restock(-1), ErrInvalidQuantity)
}
