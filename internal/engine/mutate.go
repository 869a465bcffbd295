package engine

import (
	"fmt"
	"time"

	"inkwell/internal/model"
)

// Position says where moved nodes land relative to the target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// AddNode creates a folder or document. parentID must reference an
// existing folder or be nil for the root. The new node is appended at
// the end of its sibling order. For documents, a non-nil initialContent
// is committed in the same transaction that creates the node.
func (e *Engine) AddNode(parentID *string, kind model.NodeKind, title string, initialContent []byte, docType, languageHint *string) (*model.Node, error) {
	if kind != model.KindFolder && kind != model.KindDocument {
		return nil, &InvalidOperationError{Reason: fmt.Sprintf("unknown node kind %q", kind)}
	}
	if kind == model.KindFolder && initialContent != nil {
		return nil, &InvalidOperationError{Reason: "folders cannot carry content"}
	}

	if parentID != nil {
		parent, err := e.db.GetNode(*parentID)
		if err != nil {
			return nil, storageErr("loading parent node", err)
		}
		if parent == nil {
			return nil, &NotFoundError{Kind: "node", ID: *parentID}
		}
		if !parent.IsFolder() {
			return nil, &InvalidOperationError{Reason: "parent is a document, not a folder"}
		}
	}

	siblings, err := e.db.GetChildren(parentID)
	if err != nil {
		return nil, storageErr("listing siblings", err)
	}

	now := e.clock.Now()
	node := &model.Node{
		ID:           e.idgen.New(),
		Kind:         kind,
		Title:        title,
		ParentID:     parentID,
		SiblingOrder: nextSiblingOrder(siblings),
		CreatedAt:    now,
		UpdatedAt:    now,
		DocType:      docType,
		LanguageHint: languageHint,
	}

	var blob *model.ContentBlob
	var version *model.Version
	if kind == model.KindDocument && initialContent != nil {
		hash := ContentHash(initialContent)
		blob, err = e.stageContent(hash, initialContent)
		if err != nil {
			return nil, err
		}
		version = &model.Version{
			ID:          e.idgen.New(),
			DocumentID:  node.ID,
			ContentHash: hash,
			CreatedAt:   now,
		}
		node.CurrentContentHash = &hash
	}

	if err := e.db.InsertNode(node, blob, version); err != nil {
		return nil, storageErr("creating node", err)
	}

	e.logger.Info("node added", "id", node.ID, "kind", node.Kind, "title", node.Title)
	return node, nil
}

// RenameNode updates a node's title.
func (e *Engine) RenameNode(id, title string) error {
	node, err := e.db.GetNode(id)
	if err != nil {
		return storageErr("loading node", err)
	}
	if node == nil {
		return &NotFoundError{Kind: "node", ID: id}
	}
	if err := e.db.RenameNode(id, title, e.clock.Now()); err != nil {
		return storageErr("renaming node", err)
	}
	e.logger.Debug("node renamed", "id", id, "title", title)
	return nil
}

// MoveNodes repositions a batch of nodes. With position before/after the
// nodes become siblings adjacent to the target, adopting its parent;
// with inside they become children of the target folder, appended at the
// end. A nil target addresses the root. Every id is validated before any
// write: if one fails, the whole batch is rejected. Sibling order is
// recomputed only for the affected parents.
func (e *Engine) MoveNodes(ids []string, targetID *string, pos Position) error {
	if pos != PositionBefore && pos != PositionAfter && pos != PositionInside {
		return &InvalidOperationError{Reason: fmt.Sprintf("unknown position %q", pos)}
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return &InvalidOperationError{Reason: "no nodes to move"}
	}

	moved := make(map[string]*model.Node, len(ids))
	for _, id := range ids {
		node, err := e.db.GetNode(id)
		if err != nil {
			return storageErr("loading node", err)
		}
		if node == nil {
			return &NotFoundError{Kind: "node", ID: id}
		}
		moved[id] = node
	}

	var target *model.Node
	if targetID != nil {
		var err error
		target, err = e.db.GetNode(*targetID)
		if err != nil {
			return storageErr("loading target node", err)
		}
		if target == nil {
			return &NotFoundError{Kind: "node", ID: *targetID}
		}
	}

	for _, id := range ids {
		if targetID != nil {
			if *targetID == id {
				return &InvalidOperationError{Reason: "cannot move a node relative to itself"}
			}
			descendants, err := e.Descendants(id)
			if err != nil {
				return err
			}
			for _, d := range descendants {
				if d == *targetID {
					return &InvalidOperationError{Reason: "cannot move a node into its own descendant"}
				}
			}
		}
		if pos == PositionInside && target != nil && !target.IsFolder() {
			return &InvalidOperationError{Reason: "move target is a document, not a folder"}
		}
	}

	// Resolve the parent the moved nodes will adopt.
	var newParent *string
	switch {
	case pos == PositionInside:
		newParent = targetID
	case target != nil:
		newParent = target.ParentID
	default:
		// before/after relative to the root container: append at root.
		newParent = nil
	}

	placements, err := e.planMove(ids, moved, newParent, target, pos)
	if err != nil {
		return err
	}

	if err := e.db.ApplyPlacements(placements, e.clock.Now()); err != nil {
		return storageErr("moving nodes", err)
	}

	e.logger.Info("nodes moved", "count", len(ids), "position", pos)
	return nil
}

// planMove computes the parent and sibling-order assignments for a
// validated move: the new parent's child list with the moved nodes
// spliced in, plus dense renumbering of each vacated parent.
func (e *Engine) planMove(ids []string, moved map[string]*model.Node, newParent *string, target *model.Node, pos Position) ([]Placement, error) {
	current, err := e.db.GetChildren(newParent)
	if err != nil {
		return nil, storageErr("listing target siblings", err)
	}

	remaining := make([]string, 0, len(current))
	for _, c := range current {
		if _, ok := moved[c.ID]; !ok {
			remaining = append(remaining, c.ID)
		}
	}

	insertAt := len(remaining)
	if pos != PositionInside && target != nil {
		for i, id := range remaining {
			if id == target.ID {
				insertAt = i
				if pos == PositionAfter {
					insertAt = i + 1
				}
				break
			}
		}
	}

	ordered := make([]string, 0, len(remaining)+len(ids))
	ordered = append(ordered, remaining[:insertAt]...)
	ordered = append(ordered, ids...)
	ordered = append(ordered, remaining[insertAt:]...)

	movedSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		movedSet[id] = true
	}

	var placements []Placement
	for i, id := range ordered {
		placements = append(placements, Placement{
			NodeID:       id,
			ParentID:     newParent,
			SiblingOrder: int64(i),
			Touch:        movedSet[id],
		})
	}

	// Renumber each vacated parent's remaining children.
	newParentKey := parentKey(newParent)
	seen := map[string]bool{newParentKey: true}
	for _, id := range ids {
		old := moved[id].ParentID
		key := parentKey(old)
		if seen[key] {
			continue
		}
		seen[key] = true

		children, err := e.db.GetChildren(old)
		if err != nil {
			return nil, storageErr("listing vacated siblings", err)
		}
		order := int64(0)
		for _, c := range children {
			if movedSet[c.ID] {
				continue
			}
			placements = append(placements, Placement{
				NodeID:       c.ID,
				ParentID:     old,
				SiblingOrder: order,
			})
			order++
		}
	}

	return placements, nil
}

// DuplicateNodes creates structural copies of the given nodes and all
// their descendants. Ids that sit inside another duplicated subtree are
// skipped so a subtree is never copied twice. Copies get fresh ids, the
// top copy's title gains a " (copy)" suffix, documents keep their
// current content hash by reference, and each copy is appended at the
// end of the original parent's children. Returns the top-level copies.
func (e *Engine) DuplicateNodes(ids []string) ([]model.Node, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, &InvalidOperationError{Reason: "no nodes to duplicate"}
	}

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	originals := make(map[string]*model.Node, len(ids))
	for _, id := range ids {
		node, err := e.db.GetNode(id)
		if err != nil {
			return nil, storageErr("loading node", err)
		}
		if node == nil {
			return nil, &NotFoundError{Kind: "node", ID: id}
		}
		originals[id] = node
	}

	now := e.clock.Now()
	appended := map[string]int64{} // parent key -> copies appended so far
	var all []model.Node
	var tops []model.Node

	for _, id := range ids {
		chain, err := e.AncestorChain(id)
		if err != nil {
			return nil, err
		}
		inside := false
		for _, anc := range chain {
			if idSet[anc] {
				inside = true
				break
			}
		}
		if inside {
			continue
		}

		orig := originals[id]
		key := parentKey(orig.ParentID)
		if _, ok := appended[key]; !ok {
			siblings, err := e.db.GetChildren(orig.ParentID)
			if err != nil {
				return nil, storageErr("listing siblings", err)
			}
			appended[key] = nextSiblingOrder(siblings)
		}

		top, err := e.copySubtree(orig, orig.ParentID, appended[key], true, now, map[string]bool{}, &all)
		if err != nil {
			return nil, err
		}
		appended[key]++
		tops = append(tops, *top)
	}

	if err := e.db.InsertNodes(all); err != nil {
		return nil, storageErr("duplicating nodes", err)
	}

	e.logger.Info("nodes duplicated", "requested", len(ids), "copied", len(all))
	return tops, nil
}

// copySubtree clones orig and its descendants under newParent. Copies
// are appended to out parent-first so batch insertion satisfies the
// parent foreign key. visited guards against link cycles.
func (e *Engine) copySubtree(orig *model.Node, newParent *string, order int64, top bool, now time.Time, visited map[string]bool, out *[]model.Node) (*model.Node, error) {
	if visited[orig.ID] {
		return nil, &CorruptTreeError{NodeID: orig.ID, Reason: "parent links form a cycle"}
	}
	visited[orig.ID] = true

	title := orig.Title
	if top {
		title += " (copy)"
	}
	cp := model.Node{
		ID:                 e.idgen.New(),
		Kind:               orig.Kind,
		Title:              title,
		ParentID:           newParent,
		SiblingOrder:       order,
		CreatedAt:          now,
		UpdatedAt:          now,
		CurrentContentHash: orig.CurrentContentHash,
		DocType:            orig.DocType,
		LanguageHint:       orig.LanguageHint,
	}
	*out = append(*out, cp)

	children, err := e.db.GetChildren(&orig.ID)
	if err != nil {
		return nil, storageErr("listing children", err)
	}
	for i := range children {
		child := children[i]
		if _, err := e.copySubtree(&child, &cp.ID, int64(i), false, now, visited, out); err != nil {
			return nil, err
		}
	}
	return &cp, nil
}

// DeleteNodes removes the given nodes together with all their
// descendants and the version records of every deleted document, in one
// transaction. Content blobs are never deleted here; the sweep reclaims
// unreferenced ones out of band.
func (e *Engine) DeleteNodes(ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return &InvalidOperationError{Reason: "no nodes to delete"}
	}

	doomed := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		node, err := e.db.GetNode(id)
		if err != nil {
			return storageErr("loading node", err)
		}
		if node == nil {
			return &NotFoundError{Kind: "node", ID: id}
		}
		descendants, err := e.Descendants(id)
		if err != nil {
			return err
		}
		for _, d := range append([]string{id}, descendants...) {
			if !seen[d] {
				seen[d] = true
				doomed = append(doomed, d)
			}
		}
	}

	if err := e.db.DeleteNodes(doomed); err != nil {
		return storageErr("deleting nodes", err)
	}

	e.logger.Info("nodes deleted", "requested", len(ids), "removed", len(doomed))
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}

// nextSiblingOrder returns an order value past every existing sibling.
// Deletes leave gaps in the sequence instead of renumbering, so
// appending by child count could collide with a surviving order value.
func nextSiblingOrder(siblings []model.Node) int64 {
	if len(siblings) == 0 {
		return 0
	}
	return siblings[len(siblings)-1].SiblingOrder + 1
}
