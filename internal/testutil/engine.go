package testutil

import (
	"testing"

	"inkwell/internal/engine"
)

// NewTestEngine creates an Engine backed by an in-memory database with
// a fixed clock and sequential IDs. Content bytes live in the database.
func NewTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	db := NewTestDatabase(t)
	return engine.New(db, nil, nil, engine.NewNopLogger(), FixedClock(), NewStubIDGenerator())
}

// NewTestEngineWithStore creates an Engine backed by an in-memory
// database with content bytes held in the given external blob store.
func NewTestEngineWithStore(t *testing.T, blobs engine.BlobStore, enc engine.Encryptor) *engine.Engine {
	t.Helper()
	db := NewTestDatabase(t)
	return engine.New(db, blobs, enc, engine.NewNopLogger(), FixedClock(), NewStubIDGenerator())
}
