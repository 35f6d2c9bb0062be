package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUStore(t *testing.T) {
	ctx := context.Background()
	c := NewLRUStore(50)

	require.NoError(t, c.Put(ctx, "a", make([]byte, 20)))
	require.NoError(t, c.Put(ctx, "b", make([]byte, 20)))
	assert.Equal(t, int64(40), c.Size())

	// Touch a so b is the eviction candidate.
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Put(ctx, "c", make([]byte, 20)))
	assert.Equal(t, int64(40), c.Size())

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUStore_EdgeCases(t *testing.T) {
	ctx := context.Background()
	c := NewLRUStore(50)

	t.Run("Oversized", func(t *testing.T) {
		require.NoError(t, c.Put(ctx, "big", make([]byte, 60)))
		_, err := c.Get(ctx, "big")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, int64(0), c.Size())
	})

	t.Run("Replace", func(t *testing.T) {
		require.NoError(t, c.Put(ctx, "k", make([]byte, 10)))
		require.NoError(t, c.Put(ctx, "k", make([]byte, 30)))
		assert.Equal(t, int64(30), c.Size())
		require.NoError(t, c.Put(ctx, "k", make([]byte, 5)))
		assert.Equal(t, int64(5), c.Size())

		require.NoError(t, c.Put(ctx, "k", make([]byte, 70)))
		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound, "oversized replacement drops the old copy")
	})

	t.Run("Isolation", func(t *testing.T) {
		data := []byte("hello")
		require.NoError(t, c.Put(ctx, "h", data))
		data[0] = 'j'
		got, err := c.Get(ctx, "h")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), got)
		got[0] = 'x'
		again, _ := c.Get(ctx, "h")
		assert.Equal(t, []byte("hello"), again)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, c.Delete(ctx, "h"))
		require.NoError(t, c.Delete(ctx, "never"))
		_, err := c.Get(ctx, "h")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLRUStore_AsCache(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	cache := NewLRUStore(1 << 10)
	s := NewCachingStore(inner, cache)

	require.NoError(t, s.Put(ctx, "m.evb", []byte("v1")))
	got, err := s.Get(ctx, "m.evb")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	_, err = s.Get(ctx, "m.evb")
	require.NoError(t, err)
	hits, _ := cache.Stats()
	assert.Equal(t, int64(1), hits)
}

var _ Store = (*LRUStore)(nil)
