package blobstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"inkwell/internal/engine"
)

// FileSystemStore is a filesystem-based implementation of the BlobStore
// interface. It stores content as files named by SHA-256 hash:
//
//	<root>/
//	  content/
//	    <hash>
type FileSystemStore struct {
	root       string
	contentDir string
}

// NewFileSystemStore creates a new filesystem store rooted at the given path.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	contentDir := filepath.Join(root, "content")

	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}

	return &FileSystemStore{
		root:       root,
		contentDir: contentDir,
	}, nil
}

// Put stores content identified by its hash.
// The operation is idempotent: storing the same hash multiple times is safe.
func (s *FileSystemStore) Put(hash string, r io.Reader, size int64) error {
	destPath := filepath.Join(s.contentDir, hash)

	// If content already exists, skip (idempotent)
	if _, err := os.Stat(destPath); err == nil {
		// Consume the reader to maintain expected behavior
		written, err := io.Copy(io.Discard, r)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		if written != size {
			return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
		}
		return nil
	}

	return s.writeFile(destPath, r, size)
}

// Get retrieves content by hash and writes it to w.
func (s *FileSystemStore) Get(hash string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.contentDir, hash))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("content not found: %s", hash)
		}
		return fmt.Errorf("failed to open content: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	return nil
}

// Delete removes content by hash. Missing content is not an error.
func (s *FileSystemStore) Delete(hash string) error {
	err := os.Remove(filepath.Join(s.contentDir, hash))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// Validate verifies that the store directories are accessible.
func (s *FileSystemStore) Validate() error {
	for _, dir := range []string{s.root, s.contentDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("store directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (s *FileSystemStore) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements engine.BlobStore
var _ engine.BlobStore = (*FileSystemStore)(nil)
