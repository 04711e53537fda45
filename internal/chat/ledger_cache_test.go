package chat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyamitra/health-chatbot/internal/ledger"
)

func newTestCache(t *testing.T) (*LedgerCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLedgerCache(client, time.Hour), mr
}

func TestLedgerCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)

	l := ledger.Ledger{}.
		WithTurn(ledger.RoleUser, "hello").
		WithMarker(ledger.MarkerFlow, string(ledger.FlowDiagnosis))

	require.NoError(t, cache.Save(context.Background(), "conv-1", l))

	got, err := cache.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestLedgerCacheMissing(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrLedgerNotFound)
}

func TestLedgerCacheSetsTTL(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Save(context.Background(), "conv-1", ledger.Ledger{}))
	assert.Equal(t, time.Hour, mr.TTL(ledgerKey("conv-1")))
}

func TestLedgerCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Save(context.Background(), "conv-1", ledger.Ledger{}))
	mr.FastForward(2 * time.Hour)

	_, err := cache.Load(context.Background(), "conv-1")
	assert.ErrorIs(t, err, ErrLedgerNotFound)
}
