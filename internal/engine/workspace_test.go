package engine_test

import (
	"bytes"
	"testing"

	"inkwell/internal/engine"
)

// TestWorkspaceLifecycle runs a small end-to-end scenario against a
// single engine: build a tree, edit a document, search it, and
// reorganize.
func TestWorkspaceLifecycle(t *testing.T) {
	eng, _ := newTestEngine(t)

	folder := mustAddFolder(t, eng, nil, "Projects")
	doc := mustAddDoc(t, eng, &folder.ID, "Plan", []byte("hello"))

	if _, err := eng.CommitVersion(doc.ID, []byte("hello world")); err != nil {
		t.Fatalf("CommitVersion() error = %v", err)
	}

	versions, err := eng.ListVersions(doc.ID)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("version count = %d, want 2", len(versions))
	}

	results, err := eng.SearchByBody("world", 10)
	if err != nil {
		t.Fatalf("SearchByBody() error = %v", err)
	}
	if len(results) != 1 || results[0].NodeID != doc.ID {
		t.Fatalf("search results = %v, want the edited document", results)
	}

	if err := eng.MoveNodes([]string{doc.ID}, nil, engine.PositionInside); err != nil {
		t.Fatalf("MoveNodes() error = %v", err)
	}

	moved, err := eng.GetNode(doc.ID)
	if err != nil {
		t.Fatalf("GetNode() error = %v", err)
	}
	if moved.ParentID != nil {
		t.Errorf("ParentID after move = %v, want nil", moved.ParentID)
	}

	content, err := eng.ReadContent(*moved.CurrentContentHash)
	if err != nil {
		t.Fatalf("ReadContent() error = %v", err)
	}
	if !bytes.Equal(content, []byte("hello world")) {
		t.Errorf("content = %q, want %q", content, "hello world")
	}

	emptied, err := eng.Children(&folder.ID)
	if err != nil {
		t.Fatalf("Children() error = %v", err)
	}
	if len(emptied) != 0 {
		t.Errorf("folder child count = %d, want 0", len(emptied))
	}
}
