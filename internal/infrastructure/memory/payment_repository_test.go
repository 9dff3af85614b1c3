package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	"github.com/Zhima-Mochi/petstore-core/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(t *testing.T, id, orderID int64) *payment.Payment {
	t.Helper()
	p, err := payment.New(id, orderID, decimal.RequireFromString("11.98"), "CARD", "TXN-TEST")
	require.NoError(t, err)
	return p
}

func TestPaymentRepositoryOnePerOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()

	require.NoError(t, repo.Insert(ctx, newPayment(t, 5001, 3001)))
	err := repo.Insert(ctx, newPayment(t, 5002, 3001))
	require.ErrorIs(t, err, apperr.ErrConflict)

	got, err := repo.GetByOrder(ctx, 3001)
	require.NoError(t, err)
	assert.Equal(t, int64(5001), got.ID)

	_, err = repo.Get(ctx, 5002)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPaymentRepositoryConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()

	attempts := make([]*payment.Payment, 32)
	for i := range attempts {
		attempts[i] = newPayment(t, 5001+int64(i), 3001)
	}

	var (
		wg  sync.WaitGroup
		won atomic.Int64
	)
	for _, p := range attempts {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Insert(ctx, p); err == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), won.Load())
}

func TestPaymentRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()
	p := newPayment(t, 5001, 3001)
	require.NoError(t, repo.Insert(ctx, p))

	require.NoError(t, p.MarkSucceeded())
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.Get(ctx, 5001)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, got.Status)

	require.ErrorIs(t, repo.Update(ctx, newPayment(t, 5999, 3999)), apperr.ErrNotFound)
}

func TestPaymentRepositoryCompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()
	p := newPayment(t, 5001, 3001)
	require.NoError(t, p.MarkSucceeded())
	require.NoError(t, repo.Insert(ctx, p))

	refunded := p.Clone()
	require.NoError(t, refunded.Refund())
	require.NoError(t, repo.CompareAndSetStatus(ctx, refunded, payment.StatusSuccess))

	again := p.Clone()
	require.NoError(t, again.Refund())
	err := repo.CompareAndSetStatus(ctx, again, payment.StatusSuccess)
	require.ErrorIs(t, err, payment.ErrStatusChanged)
	require.ErrorIs(t, err, apperr.ErrConflict)

	got, err := repo.Get(ctx, 5001)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, got.Status)

	err = repo.CompareAndSetStatus(ctx, newPayment(t, 5999, 3001), payment.StatusPending)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
