package engine

import "fmt"

// NotFoundError indicates an operation referenced a node, version,
// content or template id that does not exist. Callers may treat it as
// already-deleted.
type NotFoundError struct {
	Kind string // "node", "version", "content", "template"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidOperationError indicates a structural violation that was
// rejected before any write occurred, such as moving a folder inside
// its own descendant.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return "invalid operation: " + e.Reason
}

// CorruptTreeError indicates a traversal detected a cycle or dangling
// parent reference. This should be structurally impossible and points
// at a prior invariant violation, so it is surfaced rather than worked
// around.
type CorruptTreeError struct {
	NodeID string
	Reason string
}

func (e *CorruptTreeError) Error() string {
	return fmt.Sprintf("corrupt tree at node %s: %s", e.NodeID, e.Reason)
}

// StorageIOError indicates the underlying persistent medium failed.
// The operation is not retried by the engine; retry policy belongs to
// the caller.
type StorageIOError struct {
	Op  string
	Err error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage failure while %s: %v", e.Op, e.Err)
}

func (e *StorageIOError) Unwrap() error { return e.Err }

// MigrationError indicates a bulk legacy import failed. The import
// transaction is rolled back in full; the store is left untouched.
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration failed: %v", e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// storageErr wraps a database or blob store failure with the operation
// being attempted.
func storageErr(op string, err error) error {
	return &StorageIOError{Op: op, Err: err}
}
