package engine

import (
	"fmt"

	"inkwell/internal/model"
)

// ImportFolder is one folder from a legacy flat workspace. IDs are the
// legacy identifiers and are only meaningful within the import set.
type ImportFolder struct {
	ID       string
	Title    string
	ParentID *string
}

// ImportDocument is one document from a legacy flat workspace.
type ImportDocument struct {
	ID           string
	Title        string
	FolderID     *string
	Content      []byte
	DocType      *string
	LanguageHint *string
}

// ImportSet is a legacy flat workspace ready to be written into the
// store.
type ImportSet struct {
	Folders   []ImportFolder
	Documents []ImportDocument
}

// ImportWorkspace performs the one-time migration of a legacy flat
// workspace into the relations, in a single transaction. It only runs
// against a fresh store; a failure leaves the store in its
// pre-migration (empty) state. Every document gets an initial committed
// version.
func (e *Engine) ImportWorkspace(set ImportSet) error {
	count, err := e.db.CountNodes()
	if err != nil {
		return &MigrationError{Err: err}
	}
	if count > 0 {
		return &MigrationError{Err: fmt.Errorf("store already contains %d nodes", count)}
	}

	// Order folders parent-first so batch insertion satisfies the
	// parent foreign key, and map legacy ids to fresh ones.
	ordered, err := orderFolders(set.Folders)
	if err != nil {
		return &MigrationError{Err: err}
	}

	now := e.clock.Now()
	idMap := make(map[string]string, len(ordered))
	orderPerParent := map[string]int64{}

	nextOrder := func(parent *string) int64 {
		key := parentKey(parent)
		n := orderPerParent[key]
		orderPerParent[key] = n + 1
		return n
	}

	var nodes []model.Node
	for _, f := range ordered {
		newID := e.idgen.New()
		idMap[f.ID] = newID
		parent, err := mapLegacyParent(f.ParentID, idMap)
		if err != nil {
			return &MigrationError{Err: err}
		}
		nodes = append(nodes, model.Node{
			ID:           newID,
			Kind:         model.KindFolder,
			Title:        f.Title,
			ParentID:     parent,
			SiblingOrder: nextOrder(parent),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	blobSeen := map[string]bool{}
	var blobs []model.ContentBlob
	var versions []model.Version
	for _, d := range set.Documents {
		parent, err := mapLegacyParent(d.FolderID, idMap)
		if err != nil {
			return &MigrationError{Err: err}
		}
		node := model.Node{
			ID:           e.idgen.New(),
			Kind:         model.KindDocument,
			Title:        d.Title,
			ParentID:     parent,
			SiblingOrder: nextOrder(parent),
			CreatedAt:    now,
			UpdatedAt:    now,
			DocType:      d.DocType,
			LanguageHint: d.LanguageHint,
		}
		if d.Content != nil {
			hash := ContentHash(d.Content)
			if !blobSeen[hash] {
				blobSeen[hash] = true
				blob, err := e.stageContent(hash, d.Content)
				if err != nil {
					return &MigrationError{Err: err}
				}
				blobs = append(blobs, *blob)
			}
			node.CurrentContentHash = &hash
			versions = append(versions, model.Version{
				ID:          e.idgen.New(),
				DocumentID:  node.ID,
				ContentHash: hash,
				CreatedAt:   now,
			})
		}
		nodes = append(nodes, node)
	}

	if err := e.db.ImportWorkspace(nodes, blobs, versions, now); err != nil {
		return &MigrationError{Err: err}
	}

	e.logger.Info("legacy workspace imported",
		"folders", len(ordered), "documents", len(set.Documents))
	return nil
}

// orderFolders sorts folders parent-first and rejects unknown or cyclic
// parent references.
func orderFolders(folders []ImportFolder) ([]ImportFolder, error) {
	byID := make(map[string]ImportFolder, len(folders))
	for _, f := range folders {
		if _, dup := byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate legacy folder id %q", f.ID)
		}
		byID[f.ID] = f
	}

	ordered := make([]ImportFolder, 0, len(folders))
	placed := make(map[string]bool, len(folders))
	remaining := append([]ImportFolder(nil), folders...)
	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, f := range remaining {
			if f.ParentID == nil || placed[*f.ParentID] {
				ordered = append(ordered, f)
				placed[f.ID] = true
				progressed = true
				continue
			}
			if _, known := byID[*f.ParentID]; !known {
				return nil, fmt.Errorf("legacy folder %q references unknown parent %q", f.ID, *f.ParentID)
			}
			next = append(next, f)
		}
		if !progressed {
			return nil, fmt.Errorf("legacy folders contain a parent cycle")
		}
		remaining = next
	}
	return ordered, nil
}

func mapLegacyParent(legacyID *string, idMap map[string]string) (*string, error) {
	if legacyID == nil {
		return nil, nil
	}
	mapped, ok := idMap[*legacyID]
	if !ok {
		return nil, fmt.Errorf("unknown legacy folder id %q", *legacyID)
	}
	return &mapped, nil
}
