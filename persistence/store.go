package persistence

import (
	"context"
	"fmt"

	"github.com/hupe1980/eigenverify/blobstore"
)

// Save encodes b and writes it to store under name.
func Save(ctx context.Context, store blobstore.Store, name string, b *Bundle, opts ...Option) (Header, error) {
	data, err := Encode(b, opts...)
	if err != nil {
		return Header{}, err
	}
	h, err := ReadHeader(data)
	if err != nil {
		return Header{}, err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return Header{}, fmt.Errorf("persistence: put %s: %w", name, err)
	}
	return h, nil
}

// Load reads and decodes the bundle stored under name.
func Load(ctx context.Context, store blobstore.Store, name string) (*Bundle, Header, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, Header{}, fmt.Errorf("persistence: get %s: %w", name, err)
	}
	b, h, err := Decode(data)
	if err != nil {
		return nil, h, fmt.Errorf("persistence: %s: %w", name, err)
	}
	return b, h, nil
}
