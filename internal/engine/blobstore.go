package engine

import "io"

// BlobStore provides an interface for external content storage keyed by
// SHA-256 checksum. All operations stream through io.Reader/io.Writer to
// support large bodies without loading them twice.
//
// The engine writes to the store before the database transaction that
// records the content: Put is idempotent by hash, so a failed
// transaction leaves at worst an orphaned blob, which the sweep
// reclaims.
type BlobStore interface {
	// Put stores content under its checksum. Storing the same checksum
	// multiple times is safe. size is the number of bytes read from r.
	Put(hash string, r io.Reader, size int64) error

	// Get retrieves content by checksum and writes it to w.
	Get(hash string, w io.Writer) error

	// Delete removes content by checksum. Deleting a missing checksum
	// is not an error.
	Delete(hash string) error

	// Validate verifies the store is accessible and properly
	// configured.
	Validate() error
}
