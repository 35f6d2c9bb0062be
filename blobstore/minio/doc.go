// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// MinIO is S3-compatible object storage. This package uses the official MinIO
// Go client and also works against Ceph, SeaweedFS, Garage and other
// S3-compatible services without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "models/")
//	err = persistence.Save(ctx, store, "faces.evb", bundle)
package minio
