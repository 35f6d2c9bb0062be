package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/eigenverify/blobstore"
	miniostore "github.com/hupe1980/eigenverify/blobstore/minio"
	s3store "github.com/hupe1980/eigenverify/blobstore/s3"
)

type storeOptions struct {
	URL       string
	CacheDir  string
	CacheSize int64
	IOLimit   int
	Insecure  bool
}

// storeLocation is a parsed store URL.
type storeLocation struct {
	Scheme   string
	Endpoint string
	Bucket   string
	Prefix   string
	Path     string
}

func parseStoreURL(raw string) (storeLocation, error) {
	if !strings.Contains(raw, "://") {
		return storeLocation{Scheme: "file", Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return storeLocation{}, fmt.Errorf("invalid store url %q: %w", raw, err)
	}

	loc := storeLocation{Scheme: u.Scheme}
	switch u.Scheme {
	case "file":
		loc.Path = u.Host + u.Path
		if loc.Path == "" {
			loc.Path = "."
		}
	case "s3":
		loc.Bucket = u.Host
		loc.Prefix = strings.Trim(u.Path, "/")
	case "minio":
		loc.Endpoint = u.Host
		parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
		loc.Bucket = parts[0]
		if len(parts) == 2 {
			loc.Prefix = parts[1]
		}
	default:
		return storeLocation{}, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}

	if loc.Scheme != "file" && loc.Bucket == "" {
		return storeLocation{}, fmt.Errorf("store url %q has no bucket", raw)
	}
	if loc.Scheme == "minio" && loc.Endpoint == "" {
		return storeLocation{}, fmt.Errorf("store url %q has no endpoint", raw)
	}
	if loc.Prefix != "" {
		loc.Prefix += "/"
	}
	return loc, nil
}

func openStore(ctx context.Context, opts storeOptions) (blobstore.Store, error) {
	loc, err := parseStoreURL(opts.URL)
	if err != nil {
		return nil, err
	}

	var store blobstore.Store
	switch loc.Scheme {
	case "file":
		return blobstore.NewLocalStore(filepath.Clean(loc.Path)), nil
	case "s3":
		store, err = s3store.New(ctx, loc.Bucket, s3store.WithPrefix(loc.Prefix))
		if err != nil {
			return nil, err
		}
	case "minio":
		client, err := minio.New(loc.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: !opts.Insecure,
		})
		if err != nil {
			return nil, err
		}
		store = miniostore.NewStore(client, loc.Bucket, loc.Prefix)
	}

	if opts.IOLimit > 0 {
		store = blobstore.NewRateLimitedStore(store, opts.IOLimit)
	}
	switch {
	case opts.CacheDir != "":
		store = blobstore.NewCachingStore(store, blobstore.NewLocalStore(opts.CacheDir))
	case opts.CacheSize > 0:
		store = blobstore.NewCachingStore(store, blobstore.NewLRUStore(opts.CacheSize))
	}
	return store, nil
}
