package payment

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresMethod(t *testing.T) {
	_, err := New(5001, 3001, decimal.RequireFromString("11.98"), "  ", "TXN-1")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestPaymentLifecycle(t *testing.T) {
	p, err := New(5001, 3001, decimal.RequireFromString("11.98"), "CARD", "TXN-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)

	err = p.Refund()
	require.True(t, errors.Is(err, ErrNotRefundable))

	require.NoError(t, p.MarkSucceeded())
	require.Error(t, p.MarkFailed("late decline"))

	require.NoError(t, p.Refund())
	assert.Equal(t, StatusRefunded, p.Status)

	err = p.Refund()
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMarkFailedKeepsReason(t *testing.T) {
	p, err := New(5002, 3002, decimal.NewFromInt(5), "PAYPAL", "TXN-2")
	require.NoError(t, err)

	require.NoError(t, p.MarkFailed("card declined"))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "card declined", p.FailureReason)
	require.ErrorIs(t, p.Refund(), apperr.ErrValidation)
}
