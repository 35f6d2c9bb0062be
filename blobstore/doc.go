// Package blobstore provides the storage abstraction for persisted model
// bundles.
//
// A Store reads and writes whole, immutable blobs by name. Implementations
// must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic writes via temp file + rename
//   - MemoryStore: in-process map, for tests
//   - CachingStore: read-through cache in front of a slower store
//   - LRUStore: size-bounded in-memory store, the usual CachingStore cache
//   - RateLimitedStore: byte-rate throttling around another store
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with multipart uploads
//
// # Custom Implementations
//
//	type Store interface {
//	    Get(ctx, name) ([]byte, error)
//	    Put(ctx, name, data) error       // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Get must return an error satisfying errors.Is(err, ErrNotFound) for a
// missing blob, and Delete of a missing blob is not an error.
package blobstore
