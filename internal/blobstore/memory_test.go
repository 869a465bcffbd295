package blobstore

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		store := NewMemoryStore()

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

	t.Run("put is idempotent", func(t *testing.T) {
		store := NewMemoryStore()

		if err := store.Put("h1", strings.NewReader("hello"), 5); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := store.Put("h1", strings.NewReader("hello"), 5); err != nil {
			t.Fatalf("second Put() error = %v", err)
		}
		if store.Len() != 1 {
			t.Errorf("Len() = %d, want 1", store.Len())
		}
	})

	t.Run("put rejects a size mismatch", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Put("h1", strings.NewReader("hello"), 99); err == nil {
			t.Error("Put() with wrong size succeeded, want error")
		}
	})

	t.Run("get missing content", func(t *testing.T) {
		store := NewMemoryStore()
		var buf bytes.Buffer
		if err := store.Get("missing", &buf); err == nil {
			t.Error("Get() for missing hash succeeded, want error")
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Put("h1", strings.NewReader("x"), 1); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := store.Delete("h1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := store.Delete("h1"); err != nil {
			t.Fatalf("second Delete() error = %v", err)
		}
		if store.Len() != 0 {
			t.Errorf("Len() = %d, want 0", store.Len())
		}
	})
}
