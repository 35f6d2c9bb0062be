// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("models/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = persistence.Save(ctx, store, "faces.evb", bundle)
//
// # Features
//
//   - Multipart uploads through the SDK upload manager for large bundles
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
