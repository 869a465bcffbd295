package engine_test

import (
	"bytes"
	"database/sql"
	"testing"

	"inkwell/internal/engine"
	"inkwell/internal/model"
	"inkwell/internal/testutil"
)

// newTestEngine wires an Engine to a fresh in-memory database and
// returns both so tests can inspect stored state directly.
func newTestEngine(t *testing.T) (*engine.Engine, engine.Database) {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	eng := engine.New(db, nil, nil, engine.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	return eng, db
}

// newTestEngineWithConn additionally exposes the raw connection so a
// test can plant rows the store methods would never write.
func newTestEngineWithConn(t *testing.T) (*engine.Engine, *sql.DB) {
	t.Helper()
	db, conn := testutil.NewTestDatabaseWithConn(t)
	eng := engine.New(db, nil, nil, engine.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	return eng, conn
}

// mustAddFolder creates a folder or fails the test.
func mustAddFolder(t *testing.T, eng *engine.Engine, parent *string, title string) *model.Node {
	t.Helper()
	node, err := eng.AddNode(parent, model.KindFolder, title, nil, nil, nil)
	if err != nil {
		t.Fatalf("AddNode(folder %q) error = %v", title, err)
	}
	return node
}

// mustAddDoc creates a document, optionally with initial content.
func mustAddDoc(t *testing.T, eng *engine.Engine, parent *string, title string, content []byte) *model.Node {
	t.Helper()
	node, err := eng.AddNode(parent, model.KindDocument, title, content, nil, nil)
	if err != nil {
		t.Fatalf("AddNode(document %q) error = %v", title, err)
	}
	return node
}

func TestEngine_ContentHash(t *testing.T) {
	content := []byte("hello world")
	if got, want := engine.ContentHash(content), testutil.SHA256Hex(content); got != want {
		t.Errorf("ContentHash() = %s, want %s", got, want)
	}
}

func TestEngine_ReadContent(t *testing.T) {
	t.Run("returns committed bytes", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "notes", []byte("hello"))

		content, err := eng.ReadContent(*doc.CurrentContentHash)
		if err != nil {
			t.Fatalf("ReadContent() error = %v", err)
		}
		if !bytes.Equal(content, []byte("hello")) {
			t.Errorf("ReadContent() = %q, want %q", content, "hello")
		}
	})

	t.Run("unknown hash is a NotFoundError", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		_, err := eng.ReadContent("deadbeef")
		assertNotFound(t, err, "content")
	})
}
