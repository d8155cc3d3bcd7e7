package cache

import (
	"context"
	"testing"
	"time"

	"finance_tracker/internal/ledger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestSettlementCache(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewSettlementCache(rdb, time.Minute)
	ctx := context.Background()

	_, found, err := c.Get(ctx, 3, 4)
	require.NoError(t, err)
	assert.False(t, found)

	s := &ledger.Summary{
		GroupID:      3,
		GroupVersion: 4,
		GroupBalance: decimal.RequireFromString("10.25"),
		Members:      []ledger.MemberSettlement{{MemberID: 1, Name: "Alice", IsCreator: true}},
	}
	require.NoError(t, c.Set(ctx, s))
	assert.True(t, mr.Exists("settlement:group:3"))
	assert.Equal(t, time.Minute, mr.TTL("settlement:group:3"))

	got, found, err := c.Get(ctx, 3, 4)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.GroupBalance.Equal(s.GroupBalance))
	require.Len(t, got.Members, 1)
	assert.True(t, got.Members[0].IsCreator)

	require.NoError(t, c.Invalidate(ctx, 3))
	_, found, err = c.Get(ctx, 3, 4)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSettlementCacheExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewSettlementCache(rdb, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &ledger.Summary{GroupID: 1}))
	mr.FastForward(2 * time.Second)

	_, found, err := c.Get(ctx, 1, 0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDisabledCache(t *testing.T) {
	c := NewSettlementCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &ledger.Summary{GroupID: 1}))
	_, found, err := c.Get(ctx, 1, 0)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate(ctx, 1))
}

func TestSettlementCacheIgnoresOtherVersions(t *testing.T) {
	_, rdb := newRedis(t)
	c := NewSettlementCache(rdb, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &ledger.Summary{GroupID: 5, GroupVersion: 2}))

	_, found, err := c.Get(ctx, 5, 3)
	require.NoError(t, err)
	assert.False(t, found, "summary computed before a later commit")

	got, found, err := c.Get(ctx, 5, 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint(2), got.GroupVersion)
}
