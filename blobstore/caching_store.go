package blobstore

import (
	"context"
	"errors"
)

// CachingStore wraps a Store and keeps a read-through copy of every blob it
// fetches in a second, usually local, Store.
//
// Blobs are immutable once written, so a cached copy stays valid until the
// blob is replaced or deleted through this CachingStore. Writes go to the
// inner store first and invalidate the cached copy.
type CachingStore struct {
	inner Store
	cache Store
}

// NewCachingStore creates a new CachingStore.
func NewCachingStore(inner, cache Store) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache,
	}
}

// Get serves from the cache and falls back to the inner store, populating the
// cache on a miss. A failure to populate the cache is not reported.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.cache.Get(ctx, name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	data, err = s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Put(ctx, name, data)
	return data, nil
}

// Put writes through to the inner store and drops the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.cache.Delete(ctx, name); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// Delete removes the blob from both stores.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.cache.Delete(ctx, name); err != nil {
		return err
	}
	return s.inner.Delete(ctx, name)
}

// List always consults the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
