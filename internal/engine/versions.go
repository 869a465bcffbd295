package engine

import "inkwell/internal/model"

// CommitVersion records a new revision of a document's body. The blob is
// stored once per distinct hash; the version record, the blob row and
// the document's current content pointer are written in one transaction.
//
// Committing byte-identical content twice creates a second version
// record on purpose: the history preserves every save, only the bytes
// are deduplicated.
func (e *Engine) CommitVersion(documentID string, content []byte) (*model.Version, error) {
	node, err := e.db.GetNode(documentID)
	if err != nil {
		return nil, storageErr("loading document", err)
	}
	if node == nil {
		return nil, &NotFoundError{Kind: "node", ID: documentID}
	}
	if !node.IsDocument() {
		return nil, &InvalidOperationError{Reason: "cannot commit content to a folder"}
	}

	hash := ContentHash(content)
	blob, err := e.stageContent(hash, content)
	if err != nil {
		return nil, err
	}

	version := &model.Version{
		ID:          e.idgen.New(),
		DocumentID:  documentID,
		ContentHash: hash,
		CreatedAt:   e.clock.Now(),
	}
	if err := e.db.CommitVersion(version, blob, version.CreatedAt); err != nil {
		return nil, storageErr("committing version", err)
	}

	e.logger.Debug("version committed", "document", documentID, "hash", hash, "bytes", len(content))
	return version, nil
}

// ListVersions returns a document's version history, newest first.
// An unknown document yields an empty history.
func (e *Engine) ListVersions(documentID string) ([]model.Version, error) {
	versions, err := e.db.ListVersions(documentID)
	if err != nil {
		return nil, storageErr("listing versions", err)
	}
	return versions, nil
}

// GetVersionContent resolves a version record to its content bytes.
func (e *Engine) GetVersionContent(versionID string) ([]byte, error) {
	version, err := e.db.GetVersion(versionID)
	if err != nil {
		return nil, storageErr("loading version", err)
	}
	if version == nil {
		return nil, &NotFoundError{Kind: "version", ID: versionID}
	}
	return e.ReadContent(version.ContentHash)
}

// DeleteVersions prunes the given historical records. The documents'
// current content pointers and the referenced blobs are untouched.
func (e *Engine) DeleteVersions(versionIDs []string) error {
	versionIDs = dedupe(versionIDs)
	if len(versionIDs) == 0 {
		return &InvalidOperationError{Reason: "no versions to delete"}
	}
	for _, id := range versionIDs {
		version, err := e.db.GetVersion(id)
		if err != nil {
			return storageErr("loading version", err)
		}
		if version == nil {
			return &NotFoundError{Kind: "version", ID: id}
		}
	}
	if err := e.db.DeleteVersions(versionIDs); err != nil {
		return storageErr("deleting versions", err)
	}
	e.logger.Debug("versions deleted", "count", len(versionIDs))
	return nil
}

// RestoreVersion brings a historical revision back as the document's
// current content. Restoring is a fresh commit of the old bytes, with
// a new version record pointing at the already deduplicated blob. It
// never rewinds history.
func (e *Engine) RestoreVersion(versionID string) (*model.Version, error) {
	version, err := e.db.GetVersion(versionID)
	if err != nil {
		return nil, storageErr("loading version", err)
	}
	if version == nil {
		return nil, &NotFoundError{Kind: "version", ID: versionID}
	}
	content, err := e.ReadContent(version.ContentHash)
	if err != nil {
		return nil, err
	}
	return e.CommitVersion(version.DocumentID, content)
}
