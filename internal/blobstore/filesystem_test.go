package blobstore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemStore(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		store, err := NewFileSystemStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}

		if err := store.Put("h1", strings.NewReader("hello"), 5); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		var buf bytes.Buffer
		if err := store.Get("h1", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if buf.String() != "hello" {
			t.Errorf("Get() = %q, want %q", buf.String(), "hello")
		}
	})

	t.Run("content lands under the content directory", func(t *testing.T) {
		root := t.TempDir()
		store, err := NewFileSystemStore(root)
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}

		if err := store.Put("h1", strings.NewReader("hello"), 5); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(root, "content", "h1")); err != nil {
			t.Errorf("expected content file: %v", err)
		}
	})

	t.Run("put is idempotent and consumes the reader", func(t *testing.T) {
		store, err := NewFileSystemStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}

		if err := store.Put("h1", strings.NewReader("hello"), 5); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := store.Put("h1", strings.NewReader("hello"), 5); err != nil {
			t.Fatalf("second Put() error = %v", err)
		}
	})

	t.Run("put rejects a size mismatch and leaves no file", func(t *testing.T) {
		root := t.TempDir()
		store, err := NewFileSystemStore(root)
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}

		if err := store.Put("h1", strings.NewReader("short"), 99); err == nil {
			t.Fatal("Put() with wrong size succeeded, want error")
		}
		if _, err := os.Stat(filepath.Join(root, "content", "h1")); !os.IsNotExist(err) {
			t.Error("partial content file left behind")
		}
	})

	t.Run("delete ignores missing content", func(t *testing.T) {
		store, err := NewFileSystemStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}
		if err := store.Delete("missing"); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
	})

	t.Run("validate", func(t *testing.T) {
		root := t.TempDir()
		store, err := NewFileSystemStore(root)
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}
		if err := store.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}

		os.RemoveAll(filepath.Join(root, "content"))
		if err := store.Validate(); err == nil {
			t.Error("Validate() after removing content dir succeeded, want error")
		}
	})
}
