package engine

import (
	"time"

	"inkwell/internal/model"
)

// NodeLink is a single parent edge of the tree, used for bounded
// traversals that must not trust tree invariants.
type NodeLink struct {
	ID       string
	ParentID *string
}

// Placement assigns a node a parent and a sibling order. Touch marks
// nodes whose updated_at should be bumped (the moved nodes, as opposed
// to siblings that are merely renumbered).
type Placement struct {
	NodeID       string
	ParentID     *string
	SiblingOrder int64
	Touch        bool
}

// Database provides an interface for metadata storage. Every write
// method is a single transaction: it either fully commits or leaves the
// store unchanged. Methods returning a pointer return (nil, nil) when
// the row does not exist.
type Database interface {
	// Node reads

	// GetNode returns a node by id.
	GetNode(id string) (*model.Node, error)

	// GetChildren returns the direct children of a parent in sibling
	// order. A nil parentID queries root-level nodes.
	GetChildren(parentID *string) ([]model.Node, error)

	// GetNodeLinks returns every (id, parent_id) pair in the tree.
	GetNodeLinks() ([]NodeLink, error)

	// FindNodesByTitle returns nodes whose title contains the given
	// text, case-insensitively.
	FindNodesByTitle(title string) ([]model.Node, error)

	// ListDocuments returns all documents with committed content,
	// most recently updated first.
	ListDocuments() ([]model.Node, error)

	// CountNodes returns the total number of nodes in the store.
	CountNodes() (int64, error)

	// Structural writes

	// InsertNode creates a node. When blob and version are non-nil the
	// document's initial content commit happens in the same
	// transaction and the node's current content pointer is set.
	InsertNode(node *model.Node, blob *model.ContentBlob, version *model.Version) error

	// InsertNodes creates a batch of nodes in one transaction, in
	// slice order (parents must precede their children).
	InsertNodes(nodes []model.Node) error

	// RenameNode updates a node's title and updated_at.
	RenameNode(id, title string, now time.Time) error

	// ApplyPlacements applies parent and sibling-order assignments in
	// one transaction.
	ApplyPlacements(placements []Placement, now time.Time) error

	// DeleteNodes removes the given nodes and every version record
	// owned by them in one transaction. Content blobs are untouched.
	DeleteNodes(ids []string) error

	// Version ledger

	// CommitVersion records a version in one transaction: the blob row
	// is created if missing, the version record inserted, and the
	// document's current content pointer and updated_at set.
	CommitVersion(version *model.Version, blob *model.ContentBlob, now time.Time) error

	// ListVersions returns a document's versions, newest first.
	ListVersions(documentID string) ([]model.Version, error)

	// GetVersion returns a version record by id.
	GetVersion(id string) (*model.Version, error)

	// DeleteVersions removes the given version records only.
	DeleteVersions(ids []string) error

	// Content store rows

	// GetBlob returns a content blob row by hash.
	GetBlob(hash string) (*model.ContentBlob, error)

	// ListUnreferencedBlobHashes returns hashes referenced by no node
	// current pointer and no version record.
	ListUnreferencedBlobHashes() ([]string, error)

	// DeleteBlobs removes blob rows by hash.
	DeleteBlobs(hashes []string) error

	// Templates

	InsertTemplate(t *model.Template) error
	GetTemplate(id string) (*model.Template, error)
	ListTemplates() ([]model.Template, error)
	DeleteTemplate(id string) error

	// ImportWorkspace writes a bulk legacy import in one transaction.
	// It fails if the store already contains nodes. now stamps blob
	// rows whose CreatedAt is unset.
	ImportWorkspace(nodes []model.Node, blobs []model.ContentBlob, versions []model.Version, now time.Time) error

	// Close closes the database connection.
	Close() error
}
