package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "b", data))
	require.NoError(t, store.Put(ctx, "a", []byte("x")))

	data[0] = 'z'
	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got), "Put copies its input")

	got[0] = 'q'
	again, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again), "Get returns a copy")

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}
