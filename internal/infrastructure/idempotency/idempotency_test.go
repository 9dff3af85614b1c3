package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

func TestOrderCreateKey(t *testing.T) {
	assert.Equal(t, "idem:order:create:7:abc", OrderCreateKey(7, "abc"))
}

func TestMemoryStoreClaimCompleteRelease(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	claimed, _, err := s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, value, err := s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, Pending, value)

	require.NoError(t, s.Complete(ctx, "k", "3001", time.Minute))
	_, value, err = s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "3001", value)

	require.NoError(t, s.Release(ctx, "k"))
	claimed, _, err = s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(func() time.Time { return now })

	require.NoError(t, s.Complete(ctx, "k", "3001", time.Hour))
	now = now.Add(2 * time.Hour)

	claimed, _, err := s.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestMemoryStoreSingleClaimUnderConcurrency(t *testing.T) {
	s := NewMemoryStore(nil)
	var (
		wg  sync.WaitGroup
		won atomic.Int64
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := s.Claim(context.Background(), "k", time.Minute); ok {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), won.Load())
}
