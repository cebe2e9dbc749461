package storage

import "context"

// ObjectStore is the boundary to content-addressable blob storage. The core
// defines the key layout; durability and availability are the collaborator's
// responsibility.
type ObjectStore interface {
	// Upload stores the bytes under the key and returns the stored size.
	Upload(ctx context.Context, key string, data []byte, contentType string) (int64, error)

	// Download fetches the bytes stored under the key.
	Download(ctx context.Context, key string) ([]byte, error)
}
