package model

import "time"

// NodeKind distinguishes folders from documents in the workspace tree.
type NodeKind string

const (
	KindFolder   NodeKind = "folder"
	KindDocument NodeKind = "document"
)

// Node represents a folder or document in the workspace tree.
// ParentID is nil for root-level nodes. SiblingOrder is a total order
// among nodes sharing the same parent.
type Node struct {
	ID           string
	Kind         NodeKind
	Title        string
	ParentID     *string
	SiblingOrder int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Document-only fields. CurrentContentHash is nil for a freshly
	// created empty document.
	CurrentContentHash *string
	DocType            *string
	LanguageHint       *string
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool { return n.Kind == KindFolder }

// IsDocument reports whether the node is a document.
func (n *Node) IsDocument() bool { return n.Kind == KindDocument }

// ContentBlob represents content-addressable data in the store.
// The hash is the SHA-256 checksum of the content bytes (not a UUID).
// Data is nil when the bytes live in an external blob store.
type ContentBlob struct {
	Hash       string
	ByteLength int64
	Data       []byte
	CreatedAt  time.Time
}

// Version is a historical snapshot of a document's body: a pointer from
// the document to a content blob at a point in time.
type Version struct {
	ID          string
	DocumentID  string
	ContentHash string
	CreatedAt   time.Time
}

// Template is a reusable content skeleton independent of the tree.
// Content may contain {{variable}} placeholders; substitution is the
// caller's concern.
type Template struct {
	ID      string
	Title   string
	Content string
}
