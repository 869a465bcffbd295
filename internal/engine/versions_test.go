package engine_test

import (
	"bytes"
	"testing"
)

func TestEngine_CommitVersion(t *testing.T) {
	t.Run("appends a version and moves the current pointer", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "doc", []byte("v1"))

		v, err := eng.CommitVersion(doc.ID, []byte("v2"))
		if err != nil {
			t.Fatalf("CommitVersion() error = %v", err)
		}

		got, _ := eng.GetNode(doc.ID)
		if got.CurrentContentHash == nil || *got.CurrentContentHash != v.ContentHash {
			t.Errorf("CurrentContentHash = %v, want %s", got.CurrentContentHash, v.ContentHash)
		}

		versions, err := eng.ListVersions(doc.ID)
		if err != nil {
			t.Fatalf("ListVersions() error = %v", err)
		}
		if len(versions) != 2 {
			t.Fatalf("version count = %d, want 2", len(versions))
		}
		// Newest first.
		if versions[0].ID != v.ID {
			t.Errorf("versions[0] = %s, want %s", versions[0].ID, v.ID)
		}
	})

	t.Run("identical content commits a new version but no new blob", func(t *testing.T) {
		eng, db := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "doc", []byte("same"))

		v, err := eng.CommitVersion(doc.ID, []byte("same"))
		if err != nil {
			t.Fatalf("CommitVersion() error = %v", err)
		}

		versions, _ := eng.ListVersions(doc.ID)
		if len(versions) != 2 {
			t.Errorf("version count = %d, want 2 (every save is recorded)", len(versions))
		}

		blob, err := db.GetBlob(v.ContentHash)
		if err != nil {
			t.Fatalf("GetBlob() error = %v", err)
		}
		if blob == nil {
			t.Fatal("GetBlob() = nil, want stored blob")
		}
		if !bytes.Equal(blob.Data, []byte("same")) {
			t.Errorf("blob data = %q, want %q", blob.Data, "same")
		}
	})

	t.Run("identical content across documents shares one blob", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		a := mustAddDoc(t, eng, nil, "a", []byte("shared"))
		b := mustAddDoc(t, eng, nil, "b", []byte("shared"))

		if *a.CurrentContentHash != *b.CurrentContentHash {
			t.Errorf("hashes differ: %s vs %s", *a.CurrentContentHash, *b.CurrentContentHash)
		}
	})

	t.Run("rejects committing to a folder", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		folder := mustAddFolder(t, eng, nil, "folder")
		_, err := eng.CommitVersion(folder.ID, []byte("x"))
		assertInvalid(t, err)
	})

	t.Run("unknown document", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		_, err := eng.CommitVersion("missing", []byte("x"))
		assertNotFound(t, err, "node")
	})
}

func TestEngine_GetVersionContent(t *testing.T) {
	t.Run("resolves historical bytes", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "doc", []byte("v1"))
		if _, err := eng.CommitVersion(doc.ID, []byte("v2")); err != nil {
			t.Fatalf("CommitVersion() error = %v", err)
		}

		versions, _ := eng.ListVersions(doc.ID)
		oldest := versions[len(versions)-1]

		content, err := eng.GetVersionContent(oldest.ID)
		if err != nil {
			t.Fatalf("GetVersionContent() error = %v", err)
		}
		if !bytes.Equal(content, []byte("v1")) {
			t.Errorf("content = %q, want %q", content, "v1")
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		_, err := eng.GetVersionContent("missing")
		assertNotFound(t, err, "version")
	})
}

func TestEngine_DeleteVersions(t *testing.T) {
	t.Run("prunes history without touching the current pointer", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "doc", []byte("v1"))
		v2, err := eng.CommitVersion(doc.ID, []byte("v2"))
		if err != nil {
			t.Fatalf("CommitVersion() error = %v", err)
		}

		versions, _ := eng.ListVersions(doc.ID)
		oldest := versions[len(versions)-1]

		if err := eng.DeleteVersions([]string{oldest.ID}); err != nil {
			t.Fatalf("DeleteVersions() error = %v", err)
		}

		remaining, _ := eng.ListVersions(doc.ID)
		if len(remaining) != 1 || remaining[0].ID != v2.ID {
			t.Errorf("remaining versions = %v, want [%s]", remaining, v2.ID)
		}

		got, _ := eng.GetNode(doc.ID)
		if got.CurrentContentHash == nil || *got.CurrentContentHash != v2.ContentHash {
			t.Errorf("CurrentContentHash = %v, want %s", got.CurrentContentHash, v2.ContentHash)
		}
	})

	t.Run("one bad id rejects the whole batch", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "doc", []byte("v1"))
		versions, _ := eng.ListVersions(doc.ID)

		err := eng.DeleteVersions([]string{versions[0].ID, "missing"})
		assertNotFound(t, err, "version")

		remaining, _ := eng.ListVersions(doc.ID)
		if len(remaining) != 1 {
			t.Errorf("version count = %d, want 1", len(remaining))
		}
	})
}

func TestEngine_RestoreVersion(t *testing.T) {
	eng, _ := newTestEngine(t)
	doc := mustAddDoc(t, eng, nil, "doc", []byte("v1"))
	if _, err := eng.CommitVersion(doc.ID, []byte("v2")); err != nil {
		t.Fatalf("CommitVersion() error = %v", err)
	}

	versions, _ := eng.ListVersions(doc.ID)
	oldest := versions[len(versions)-1]

	restored, err := eng.RestoreVersion(oldest.ID)
	if err != nil {
		t.Fatalf("RestoreVersion() error = %v", err)
	}

	// Restoring appends a new version; history is never rewound.
	all, _ := eng.ListVersions(doc.ID)
	if len(all) != 3 {
		t.Errorf("version count = %d, want 3", len(all))
	}
	if restored.ContentHash != oldest.ContentHash {
		t.Errorf("restored hash = %s, want %s", restored.ContentHash, oldest.ContentHash)
	}

	got, _ := eng.GetNode(doc.ID)
	if got.CurrentContentHash == nil || *got.CurrentContentHash != oldest.ContentHash {
		t.Errorf("CurrentContentHash = %v, want %s", got.CurrentContentHash, oldest.ContentHash)
	}
}
