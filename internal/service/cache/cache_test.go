package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	in := []byte("abc")
	require.NoError(t, c.SetBytes(ctx, "k", in, 0))
	in[0] = 'x'
	out, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(out))
	out[1] = 'y'
	again, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(again))

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ := c.GetBytes(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	c := NewRedisCache(RedisConfig{Addr: mr.Addr()})
	defer c.Close()

	require.NoError(t, c.Ping(ctx))
	_, ok, err := c.GetBytes(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}
