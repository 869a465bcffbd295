package legacy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanDir(t *testing.T) {
	root := t.TempDir()

	mustMkdir := func(path string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(root, path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
	}
	mustWrite := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(root, path), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	mustMkdir("projects")
	mustMkdir("projects/archive")
	mustMkdir(".git")
	mustWrite("readme.md", "# hello")
	mustWrite("projects/plan.txt", "the plan")
	mustWrite("projects/.hidden", "skip me")
	mustWrite(".git/config", "skip me too")

	ws, err := ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}

	if len(ws.Folders) != 2 {
		t.Fatalf("folder count = %d, want 2 (hidden dirs skipped)", len(ws.Folders))
	}
	if len(ws.Documents) != 2 {
		t.Fatalf("document count = %d, want 2 (hidden files skipped)", len(ws.Documents))
	}

	byID := map[string]Document{}
	for _, d := range ws.Documents {
		byID[d.ID] = d
	}

	readme, ok := byID["readme.md"]
	if !ok {
		t.Fatal("readme.md not scanned")
	}
	if readme.Title != "readme" {
		t.Errorf("readme.Title = %q, want readme (extension stripped)", readme.Title)
	}
	if readme.FolderID != nil {
		t.Errorf("readme.FolderID = %v, want nil", readme.FolderID)
	}
	if readme.DocType == nil || *readme.DocType != "markdown" {
		t.Errorf("readme.DocType = %v, want markdown", readme.DocType)
	}
	if readme.Content != "# hello" {
		t.Errorf("readme.Content = %q, want file body", readme.Content)
	}

	plan, ok := byID[filepath.Join("projects", "plan.txt")]
	if !ok {
		t.Fatal("projects/plan.txt not scanned")
	}
	if plan.FolderID == nil || *plan.FolderID != "projects" {
		t.Errorf("plan.FolderID = %v, want projects", plan.FolderID)
	}
	if plan.DocType == nil || *plan.DocType != "text" {
		t.Errorf("plan.DocType = %v, want text", plan.DocType)
	}

	// Nested folder references its parent by relative path.
	var archive *Folder
	for i := range ws.Folders {
		if ws.Folders[i].Title == "archive" {
			archive = &ws.Folders[i]
		}
	}
	if archive == nil {
		t.Fatal("archive folder not scanned")
	}
	if archive.ParentID == nil || *archive.ParentID != "projects" {
		t.Errorf("archive.ParentID = %v, want projects", archive.ParentID)
	}
}

func TestScanDir_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ScanDir(file); err == nil {
		t.Error("ScanDir() on a file succeeded, want error")
	}
}
