package storage

import (
	"context"
)

// ObjectStorage defines the interface for object storage operations.
// A partition is a named bucket holding one file category (image-uploads,
// video-uploads, text-uploads).
type ObjectStorage interface {
	// Put writes an object under (partition, key). Writing the same key twice
	// overwrites, which makes whole-call retries safe at this layer.
	Put(ctx context.Context, partition, key string, data []byte, contentType string) error

	// PublicURL returns the externally reachable address of an object. It does
	// not check that the object exists.
	PublicURL(partition, key string) string
}
