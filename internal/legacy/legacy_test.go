package legacy

import (
	"strings"
	"testing"
)

const jsonExport = `{
  "folders": [
    {"id": "f1", "title": "Projects"},
    {"id": "f2", "title": "Archive", "parent_id": "f1"}
  ],
  "documents": [
    {"id": "d1", "title": "Plan", "folder_id": "f2", "content": "hello", "doc_type": "markdown"},
    {"id": "d2", "title": "Loose", "content": "top"}
  ]
}`

const yamlExport = `
folders:
  - id: f1
    title: Projects
  - id: f2
    title: Archive
    parent_id: f1
documents:
  - id: d1
    title: Plan
    folder_id: f2
    content: hello
    doc_type: markdown
  - id: d2
    title: Loose
    content: top
`

func assertWorkspace(t *testing.T, ws *Workspace) {
	t.Helper()
	if len(ws.Folders) != 2 {
		t.Fatalf("folder count = %d, want 2", len(ws.Folders))
	}
	if len(ws.Documents) != 2 {
		t.Fatalf("document count = %d, want 2", len(ws.Documents))
	}
	archive := ws.Folders[1]
	if archive.ParentID == nil || *archive.ParentID != "f1" {
		t.Errorf("archive.ParentID = %v, want f1", archive.ParentID)
	}
	plan := ws.Documents[0]
	if plan.FolderID == nil || *plan.FolderID != "f2" {
		t.Errorf("plan.FolderID = %v, want f2", plan.FolderID)
	}
	if plan.Content != "hello" {
		t.Errorf("plan.Content = %q, want hello", plan.Content)
	}
	if plan.DocType == nil || *plan.DocType != "markdown" {
		t.Errorf("plan.DocType = %v, want markdown", plan.DocType)
	}
	loose := ws.Documents[1]
	if loose.FolderID != nil {
		t.Errorf("loose.FolderID = %v, want nil", loose.FolderID)
	}
}

func TestDecodeJSON(t *testing.T) {
	ws, err := DecodeJSON(strings.NewReader(jsonExport))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	assertWorkspace(t, ws)
}

func TestDecodeYAML(t *testing.T) {
	ws, err := DecodeYAML(strings.NewReader(yamlExport))
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}
	assertWorkspace(t, ws)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	if _, err := DecodeJSON(strings.NewReader("{not json")); err == nil {
		t.Error("DecodeJSON() parsed malformed input, want error")
	}
}

func TestWorkspace_ToImportSet(t *testing.T) {
	ws, err := DecodeJSON(strings.NewReader(jsonExport))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	set := ws.ToImportSet()
	if len(set.Folders) != 2 || len(set.Documents) != 2 {
		t.Fatalf("set sizes = %d folders, %d documents, want 2 and 2", len(set.Folders), len(set.Documents))
	}
	if string(set.Documents[0].Content) != "hello" {
		t.Errorf("content = %q, want hello", set.Documents[0].Content)
	}
}
