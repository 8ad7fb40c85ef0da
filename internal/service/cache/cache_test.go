package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "stockpulse:series:TCS.NS", Key("stockpulse", "series", "TCS.NS"))
	assert.Equal(t, "solo", Key("solo"))
}

func TestTTLCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()

	_, ok, err := c.GetBytes(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)
}

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "short", []byte("x"), time.Second))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("y"), 0))

	now = now.Add(2 * time.Second)
	_, ok, _ := c.GetBytes(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
}

func TestTTLCacheSweepsOnWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	for i := 0; i < sweepEvery-1; i++ {
		require.NoError(t, c.SetBytes(ctx, fmt.Sprintf("k%d", i), []byte("x"), time.Second))
	}
	now = now.Add(time.Minute)
	require.NoError(t, c.SetBytes(ctx, "fresh", []byte("x"), time.Hour))

	assert.Equal(t, 1, c.Len())
}
