package blobstore

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"inkwell/internal/engine"
)

// MemoryStore is an in-memory implementation of the BlobStore
// interface, useful for testing. It is safe for concurrent use.
type MemoryStore struct {
	content map[string][]byte // hash -> content
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		content: make(map[string][]byte),
	}
}

// Put stores content under its hash.
func (m *MemoryStore) Put(hash string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Idempotent: storing the same hash multiple times is safe
	m.content[hash] = data
	return nil
}

// Get retrieves content by hash.
func (m *MemoryStore) Get(hash string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.content[hash]
	if !ok {
		return fmt.Errorf("content not found: %s", hash)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

// Delete removes content by hash. Missing hashes are ignored.
func (m *MemoryStore) Delete(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.content, hash)
	return nil
}

// Validate always succeeds for the in-memory store.
func (m *MemoryStore) Validate() error { return nil }

// Len returns the number of stored blobs. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.content)
}

// Compile-time check that MemoryStore implements engine.BlobStore
var _ engine.BlobStore = (*MemoryStore)(nil)
