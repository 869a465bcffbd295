package legacy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScanDir builds a Workspace from a directory tree of plain files:
// directories become folders, regular files become documents with the
// file contents as their body. Hidden entries are skipped. Legacy ids
// are the paths relative to root.
func ScanDir(root string) (*Workspace, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading legacy directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("legacy path is not a directory: %s", root)
	}

	ws := &Workspace{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("calculating relative path: %w", err)
		}
		parent := parentIDFor(rel)

		if d.IsDir() {
			ws.Folders = append(ws.Folders, Folder{
				ID:       rel,
				Title:    d.Name(),
				ParentID: parent,
			})
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading legacy file %s: %w", rel, err)
		}
		title := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		ws.Documents = append(ws.Documents, Document{
			ID:       rel,
			Title:    title,
			FolderID: parent,
			Content:  string(content),
			DocType:  docTypeFor(filepath.Ext(d.Name())),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// parentIDFor returns the legacy id of the containing directory, or nil
// for entries directly under the root.
func parentIDFor(rel string) *string {
	dir := filepath.Dir(rel)
	if dir == "." {
		return nil
	}
	return &dir
}

func docTypeFor(ext string) *string {
	var t string
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		t = "markdown"
	case ".txt", "":
		t = "text"
	default:
		t = strings.TrimPrefix(strings.ToLower(ext), ".")
	}
	return &t
}
