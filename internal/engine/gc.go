package engine

// SweepBlobs reclaims content blobs referenced by no node current
// pointer and no version record. It is meant to run out of band, never
// inline with deletes: deletion of nodes and versions leaves blobs in
// place, and this sweep is the only thing that removes them.
//
// Returns the number of blobs reclaimed.
func (e *Engine) SweepBlobs() (int, error) {
	hashes, err := e.db.ListUnreferencedBlobHashes()
	if err != nil {
		return 0, storageErr("listing unreferenced blobs", err)
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	if err := e.db.DeleteBlobs(hashes); err != nil {
		return 0, storageErr("deleting blob rows", err)
	}

	// External objects go last: if a delete fails the row is already
	// gone, so nothing references the leftover object and a later sweep
	// of the store can reclaim it.
	if e.blobs != nil {
		for _, hash := range hashes {
			if err := e.blobs.Delete(hash); err != nil {
				e.logger.Warn("failed to delete blob from store", "hash", hash, "error", err)
			}
		}
	}

	e.logger.Info("blob sweep complete", "reclaimed", len(hashes))
	return len(hashes), nil
}
