package database

// Schema is the flattened current schema, kept in sync with the
// migrations in migrations/files. Tests apply it directly to in-memory
// databases instead of running the migration machinery.
const Schema = `
CREATE TABLE content_blobs (
    hash TEXT PRIMARY KEY,
    byte_length INTEGER NOT NULL,
    data BLOB,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE nodes (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK (kind IN ('folder', 'document')),
    title TEXT NOT NULL,
    parent_id TEXT REFERENCES nodes(id),
    sibling_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    current_content_hash TEXT REFERENCES content_blobs(hash),
    doc_type TEXT,
    language_hint TEXT
);

CREATE INDEX idx_nodes_parent ON nodes(parent_id, sibling_order);
CREATE INDEX idx_nodes_updated ON nodes(updated_at);

CREATE TABLE versions (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL REFERENCES nodes(id),
    content_hash TEXT NOT NULL REFERENCES content_blobs(hash),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX idx_versions_document ON versions(document_id, created_at);

CREATE TABLE templates (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL
);
`
