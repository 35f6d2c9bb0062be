package blobstore

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// LRUStore is an in-memory Store bounded by total blob size. When a Put
// exceeds the capacity, the least recently used blobs are evicted. It is meant
// as the cache layer of a CachingStore.
type LRUStore struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[string]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	name  string
	value []byte
}

// NewLRUStore creates an LRUStore holding at most capacity bytes.
func NewLRUStore(capacity int64) *LRUStore {
	return &LRUStore{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns a copy of the blob and marks it as recently used.
func (c *LRUStore) Get(_ context.Context, name string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[name]
	if !ok {
		c.misses.Add(1)
		return nil, fmt.Errorf("blobstore: %s: %w", name, ErrNotFound)
	}
	c.hits.Add(1)
	c.evictList.MoveToFront(ent)
	return append([]byte(nil), ent.Value.(*lruEntry).value...), nil
}

// Put caches a copy of data. A blob larger than the capacity is not kept and
// any older copy under the same name is dropped.
func (c *LRUStore) Put(_ context.Context, name string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[name]; ok {
		c.removeElement(ent)
	}

	itemSize := int64(len(data))
	if itemSize > c.capacity {
		return nil
	}

	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	element := c.evictList.PushFront(&lruEntry{name: name, value: append([]byte(nil), data...)})
	c.items[name] = element
	c.size += itemSize
	return nil
}

// Delete removes the blob if present.
func (c *LRUStore) Delete(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[name]; ok {
		c.removeElement(ent)
	}
	return nil
}

// List returns the cached names with the given prefix, sorted.
func (c *LRUStore) List(_ context.Context, prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for name := range c.items {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (c *LRUStore) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*lruEntry)
	delete(c.items, kv.name)
	c.size -= int64(len(kv.value))
}

// Stats returns cache hit and miss counts.
func (c *LRUStore) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRUStore) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
