package blobstore

import (
	"fmt"

	"inkwell/internal/config"
	"inkwell/internal/engine"
)

// NewBlobStoreFromConfig creates a BlobStore implementation based on
// the config type. Type "database" returns a nil store: content bytes
// then live in the content_blobs relation itself, inside the commit
// transaction.
func NewBlobStoreFromConfig(cfg config.BlobStoreConfig) (engine.BlobStore, error) {
	switch cfg.Type {
	case "", "database":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem blob store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 blob store requires s3_bucket to be set")
		}
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
