package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(RedisConfig{
		Addr:       mr.Addr(),
		KeyPrefix:  "satchel:ai:",
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c, mr
}

func TestRedisCache_BasicOperations(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set(ctx, "summary:doc", []byte("a fox runs"), 0)

		val, ok := c.Get(ctx, "summary:doc")
		assert.True(t, ok)
		assert.Equal(t, []byte("a fox runs"), val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get(ctx, "nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("OverwriteWins", func(t *testing.T) {
		c.Set(ctx, "key", []byte("first"), 0)
		c.Set(ctx, "key", []byte("second"), 0)

		val, ok := c.Get(ctx, "key")
		assert.True(t, ok)
		assert.Equal(t, []byte("second"), val)
	})
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "expiring", []byte("value"), 50*time.Millisecond)

	_, ok := c.Get(ctx, "expiring")
	require.True(t, ok)

	mr.FastForward(60 * time.Millisecond)

	_, ok = c.Get(ctx, "expiring")
	assert.False(t, ok)
}

func TestRedisCache_Clear(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "summary:a", []byte("1"), 0)
	c.Set(ctx, "summary:b", []byte("2"), 0)
	c.Set(ctx, "studyPlan:42", []byte("3"), 0)

	// A key outside the cache's prefix must survive Clear
	require.NoError(t, mr.Set("other:app:key", "untouched"))

	c.Clear(ctx)

	for _, key := range []string{"summary:a", "summary:b", "studyPlan:42"} {
		_, ok := c.Get(ctx, key)
		assert.False(t, ok, "key %q should be gone after clear", key)
	}
	assert.True(t, mr.Exists("other:app:key"))
}

func TestRedisCache_DegradesToMiss(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, "key", []byte("value"), 0)

	// Backend failure must read as a miss, never an error
	mr.SetError("redis is down")

	val, ok := c.Get(ctx, "key")
	assert.False(t, ok)
	assert.Nil(t, val)

	mr.SetError("")

	_, ok = c.Get(ctx, "key")
	assert.True(t, ok)
}
