// Package legacy reads the flat workspace representations that predate
// the engine: a single JSON or YAML export, or a plain directory tree
// of files. The decoded workspace feeds the engine's one-time bulk
// import.
package legacy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"inkwell/internal/engine"
)

// Workspace is a legacy flat export: folders and documents referencing
// their parents by legacy id.
type Workspace struct {
	Folders   []Folder   `json:"folders" yaml:"folders"`
	Documents []Document `json:"documents" yaml:"documents"`
}

// Folder is one legacy folder record.
type Folder struct {
	ID       string  `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	ParentID *string `json:"parent_id" yaml:"parent_id"`
}

// Document is one legacy document record.
type Document struct {
	ID           string  `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	FolderID     *string `json:"folder_id" yaml:"folder_id"`
	Content      string  `json:"content" yaml:"content"`
	DocType      *string `json:"doc_type" yaml:"doc_type"`
	LanguageHint *string `json:"language_hint" yaml:"language_hint"`
}

// DecodeJSON reads a legacy JSON export.
func DecodeJSON(r io.Reader) (*Workspace, error) {
	var ws Workspace
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ws); err != nil {
		return nil, fmt.Errorf("decoding legacy JSON: %w", err)
	}
	return &ws, nil
}

// DecodeYAML reads a legacy YAML export.
func DecodeYAML(r io.Reader) (*Workspace, error) {
	var ws Workspace
	if err := yaml.NewDecoder(r).Decode(&ws); err != nil {
		return nil, fmt.Errorf("decoding legacy YAML: %w", err)
	}
	return &ws, nil
}

// DecodeFile reads a legacy export file, picking the format from the
// extension (.json, .yaml, .yml).
func DecodeFile(path string) (*Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening legacy export: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(f)
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return nil, fmt.Errorf("unsupported legacy export format: %s", filepath.Ext(path))
	}
}

// ToImportSet converts the workspace to the engine's import input.
func (ws *Workspace) ToImportSet() engine.ImportSet {
	set := engine.ImportSet{}
	for _, f := range ws.Folders {
		set.Folders = append(set.Folders, engine.ImportFolder{
			ID:       f.ID,
			Title:    f.Title,
			ParentID: f.ParentID,
		})
	}
	for _, d := range ws.Documents {
		set.Documents = append(set.Documents, engine.ImportDocument{
			ID:           d.ID,
			Title:        d.Title,
			FolderID:     d.FolderID,
			Content:      []byte(d.Content),
			DocType:      d.DocType,
			LanguageHint: d.LanguageHint,
		})
	}
	return set
}
