package engine

import "inkwell/internal/model"

// CreateTemplate stores a reusable content skeleton. Templates live
// outside the tree.
func (e *Engine) CreateTemplate(title, content string) (*model.Template, error) {
	t := &model.Template{
		ID:      e.idgen.New(),
		Title:   title,
		Content: content,
	}
	if err := e.db.InsertTemplate(t); err != nil {
		return nil, storageErr("creating template", err)
	}
	return t, nil
}

// GetTemplate returns a template by id.
func (e *Engine) GetTemplate(id string) (*model.Template, error) {
	t, err := e.db.GetTemplate(id)
	if err != nil {
		return nil, storageErr("loading template", err)
	}
	if t == nil {
		return nil, &NotFoundError{Kind: "template", ID: id}
	}
	return t, nil
}

// ListTemplates returns all templates.
func (e *Engine) ListTemplates() ([]model.Template, error) {
	ts, err := e.db.ListTemplates()
	if err != nil {
		return nil, storageErr("listing templates", err)
	}
	return ts, nil
}

// DeleteTemplate removes a template. Documents created from it are
// unaffected.
func (e *Engine) DeleteTemplate(id string) error {
	t, err := e.db.GetTemplate(id)
	if err != nil {
		return storageErr("loading template", err)
	}
	if t == nil {
		return &NotFoundError{Kind: "template", ID: id}
	}
	if err := e.db.DeleteTemplate(id); err != nil {
		return storageErr("deleting template", err)
	}
	return nil
}

// InstantiateTemplate creates a new document under parentID with the
// template's content as its initial committed body. Placeholder
// substitution is the caller's concern; the content is copied verbatim.
func (e *Engine) InstantiateTemplate(templateID string, parentID *string, title string) (*model.Node, error) {
	t, err := e.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = t.Title
	}
	return e.AddNode(parentID, model.KindDocument, title, []byte(t.Content), nil, nil)
}
