package engine

import "inkwell/internal/model"

// Children returns the direct children of a parent in sibling order.
// A nil parentID queries root-level nodes. Querying a non-existent
// parent returns an empty list, not an error: only mutations enforce
// existence preconditions.
func (e *Engine) Children(parentID *string) ([]model.Node, error) {
	children, err := e.db.GetChildren(parentID)
	if err != nil {
		return nil, storageErr("listing children", err)
	}
	return children, nil
}

// Descendants returns the ids of every node below the given node, in
// breadth-first order. The traversal is bounded by the stored parent
// links and makes no acyclicity assumption: a link cycle is reported as
// a CorruptTreeError rather than looping forever.
func (e *Engine) Descendants(nodeID string) ([]string, error) {
	links, err := e.db.GetNodeLinks()
	if err != nil {
		return nil, storageErr("loading tree links", err)
	}

	children := make(map[string][]string, len(links))
	exists := make(map[string]bool, len(links))
	for _, l := range links {
		exists[l.ID] = true
		if l.ParentID != nil {
			children[*l.ParentID] = append(children[*l.ParentID], l.ID)
		}
	}
	if !exists[nodeID] {
		return nil, nil
	}

	var result []string
	visited := map[string]bool{nodeID: true}
	queue := append([]string(nil), children[nodeID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			return nil, &CorruptTreeError{NodeID: id, Reason: "parent links form a cycle"}
		}
		visited[id] = true
		result = append(result, id)
		queue = append(queue, children[id]...)
	}
	return result, nil
}

// AncestorChain returns the ids from a node's immediate parent up to the
// root. The walk is bounded: a cycle or a dangling parent reference is
// reported as a CorruptTreeError. A non-existent node returns an empty
// chain.
func (e *Engine) AncestorChain(nodeID string) ([]string, error) {
	links, err := e.db.GetNodeLinks()
	if err != nil {
		return nil, storageErr("loading tree links", err)
	}

	parents := make(map[string]*string, len(links))
	for _, l := range links {
		parents[l.ID] = l.ParentID
	}
	parent, ok := parents[nodeID]
	if !ok {
		return nil, nil
	}

	var chain []string
	seen := map[string]bool{nodeID: true}
	for parent != nil {
		id := *parent
		if seen[id] {
			return nil, &CorruptTreeError{NodeID: id, Reason: "ancestor chain contains a cycle"}
		}
		next, ok := parents[id]
		if !ok {
			return nil, &CorruptTreeError{NodeID: id, Reason: "dangling parent reference"}
		}
		seen[id] = true
		chain = append(chain, id)
		parent = next
	}
	return chain, nil
}

// FindByTitle returns nodes whose title contains the given text,
// case-insensitively. This is the trivial title lookup; body search
// lives in SearchByBody.
func (e *Engine) FindByTitle(title string) ([]model.Node, error) {
	nodes, err := e.db.FindNodesByTitle(title)
	if err != nil {
		return nil, storageErr("searching titles", err)
	}
	return nodes, nil
}

// GetNode returns a node by id, or a NotFoundError.
func (e *Engine) GetNode(id string) (*model.Node, error) {
	node, err := e.db.GetNode(id)
	if err != nil {
		return nil, storageErr("loading node", err)
	}
	if node == nil {
		return nil, &NotFoundError{Kind: "node", ID: id}
	}
	return node, nil
}
