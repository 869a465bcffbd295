package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/database/migrations"
	"inkwell/internal/engine"
	"inkwell/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the engine.Database interface using SQLite.
// Every multi-step write runs inside a single transaction so a reader
// can never observe a partially applied mutation.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:   db,
		path: "",
	}
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. path can be a file path or ":memory:" for an
// in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

const nodeColumns = `id, kind, title, parent_id, sibling_order, created_at, updated_at, current_content_hash, doc_type, language_hint`

func scanNode(row interface{ Scan(...any) error }) (*model.Node, error) {
	var n model.Node
	var parentID, contentHash, docType, languageHint sql.NullString
	err := row.Scan(
		&n.ID,
		&n.Kind,
		&n.Title,
		&parentID,
		&n.SiblingOrder,
		&n.CreatedAt,
		&n.UpdatedAt,
		&contentHash,
		&docType,
		&languageHint,
	)
	if err != nil {
		return nil, err
	}
	n.ParentID = nullableString(parentID)
	n.CurrentContentHash = nullableString(contentHash)
	n.DocType = nullableString(docType)
	n.LanguageHint = nullableString(languageHint)
	return &n, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Node reads

func (s *SQLiteDatabase) GetNode(id string) (*model.Node, error) {
	row := s.db.QueryRowContext(context.Background(),
		`SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	node, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding node: %w", err)
	}
	return node, nil
}

func (s *SQLiteDatabase) GetChildren(parentID *string) ([]model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE parent_id IS NULL ORDER BY sibling_order`
	args := []any{}
	if parentID != nil {
		query = `SELECT ` + nodeColumns + ` FROM nodes WHERE parent_id = ? ORDER BY sibling_order`
		args = append(args, *parentID)
	}

	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}

func (s *SQLiteDatabase) GetNodeLinks() ([]engine.NodeLink, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, parent_id FROM nodes ORDER BY parent_id, sibling_order`)
	if err != nil {
		return nil, fmt.Errorf("listing node links: %w", err)
	}
	defer rows.Close()

	var links []engine.NodeLink
	for rows.Next() {
		var link engine.NodeLink
		var parentID sql.NullString
		if err := rows.Scan(&link.ID, &parentID); err != nil {
			return nil, fmt.Errorf("scanning node link: %w", err)
		}
		link.ParentID = nullableString(parentID)
		links = append(links, link)
	}
	return links, rows.Err()
}

func (s *SQLiteDatabase) FindNodesByTitle(title string) ([]model.Node, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT `+nodeColumns+` FROM nodes
		 WHERE lower(title) LIKE '%' || lower(?) || '%'
		 ORDER BY updated_at DESC`, title)
	if err != nil {
		return nil, fmt.Errorf("searching titles: %w", err)
	}
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}

func (s *SQLiteDatabase) ListDocuments() ([]model.Node, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT `+nodeColumns+` FROM nodes
		 WHERE kind = 'document' AND current_content_hash IS NOT NULL
		 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}

func (s *SQLiteDatabase) CountNodes() (int64, error) {
	var count int64
	err := s.db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM nodes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting nodes: %w", err)
	}
	return count, nil
}

// Structural writes

func (s *SQLiteDatabase) InsertNode(node *model.Node, blob *model.ContentBlob, version *model.Version) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if blob != nil {
		if err := ensureBlob(ctx, tx, blob, node.CreatedAt); err != nil {
			return err
		}
	}

	if err := insertNode(ctx, tx, node); err != nil {
		return err
	}

	if version != nil {
		if err := insertVersion(ctx, tx, version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) InsertNodes(nodes []model.Node) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range nodes {
		if err := insertNode(ctx, tx, &nodes[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) RenameNode(id, title string, now time.Time) error {
	res, err := s.db.ExecContext(context.Background(),
		`UPDATE nodes SET title = ?, updated_at = ? WHERE id = ?`, title, now, id)
	if err != nil {
		return fmt.Errorf("renaming node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("renaming node: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("renaming node: no row for id %s", id)
	}
	return nil
}

func (s *SQLiteDatabase) ApplyPlacements(placements []engine.Placement, now time.Time) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range placements {
		var res sql.Result
		if p.Touch {
			res, err = tx.ExecContext(ctx,
				`UPDATE nodes SET parent_id = ?, sibling_order = ?, updated_at = ? WHERE id = ?`,
				toNullString(p.ParentID), p.SiblingOrder, now, p.NodeID)
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE nodes SET parent_id = ?, sibling_order = ? WHERE id = ?`,
				toNullString(p.ParentID), p.SiblingOrder, p.NodeID)
		}
		if err != nil {
			return fmt.Errorf("placing node %s: %w", p.NodeID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("placing node %s: %w", p.NodeID, err)
		}
		if affected == 0 {
			return fmt.Errorf("placing node %s: no such node", p.NodeID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteNodes(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// The parent_id self reference would otherwise reject deleting a
	// parent row before its children within the same statement.
	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return fmt.Errorf("deferring foreign keys: %w", err)
	}

	ph, args := placeholders(ids)

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM versions WHERE document_id IN (`+ph+`)`, args...); err != nil {
		return fmt.Errorf("deleting versions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM nodes WHERE id IN (`+ph+`)`, args...); err != nil {
		return fmt.Errorf("deleting nodes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Version ledger

// CommitVersion atomically records a revision in a single transaction:
// 1. Creates the content blob row if it doesn't already exist.
// 2. Inserts the version record.
// 3. Updates the document's current content pointer and updated_at.
func (s *SQLiteDatabase) CommitVersion(version *model.Version, blob *model.ContentBlob, now time.Time) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureBlob(ctx, tx, blob, now); err != nil {
		return err
	}
	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE nodes SET current_content_hash = ?, updated_at = ? WHERE id = ? AND kind = 'document'`,
		version.ContentHash, now, version.DocumentID)
	if err != nil {
		return fmt.Errorf("updating current content pointer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating current content pointer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("updating current content pointer: no document with id %s", version.DocumentID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListVersions(documentID string) ([]model.Version, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, document_id, content_hash, created_at FROM versions
		 WHERE document_id = ?
		 ORDER BY created_at DESC, rowid DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var versions []model.Version
	for rows.Next() {
		var v model.Version
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.ContentHash, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SQLiteDatabase) GetVersion(id string) (*model.Version, error) {
	var v model.Version
	err := s.db.QueryRowContext(context.Background(),
		`SELECT id, document_id, content_hash, created_at FROM versions WHERE id = ?`, id).
		Scan(&v.ID, &v.DocumentID, &v.ContentHash, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding version: %w", err)
	}
	return &v, nil
}

func (s *SQLiteDatabase) DeleteVersions(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	if _, err := s.db.ExecContext(context.Background(),
		`DELETE FROM versions WHERE id IN (`+ph+`)`, args...); err != nil {
		return fmt.Errorf("deleting versions: %w", err)
	}
	return nil
}

// Content store rows

func (s *SQLiteDatabase) GetBlob(hash string) (*model.ContentBlob, error) {
	var b model.ContentBlob
	err := s.db.QueryRowContext(context.Background(),
		`SELECT hash, byte_length, data, created_at FROM content_blobs WHERE hash = ?`, hash).
		Scan(&b.Hash, &b.ByteLength, &b.Data, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding content blob: %w", err)
	}
	return &b, nil
}

func (s *SQLiteDatabase) ListUnreferencedBlobHashes() ([]string, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT hash FROM content_blobs
		 WHERE hash NOT IN (SELECT current_content_hash FROM nodes WHERE current_content_hash IS NOT NULL)
		   AND hash NOT IN (SELECT content_hash FROM versions)`)
	if err != nil {
		return nil, fmt.Errorf("listing unreferenced blobs: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scanning blob hash: %w", err)
		}
		hashes = append(hashes, hash)
	}
	return hashes, rows.Err()
}

func (s *SQLiteDatabase) DeleteBlobs(hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	ph, args := placeholders(hashes)
	if _, err := s.db.ExecContext(context.Background(),
		`DELETE FROM content_blobs WHERE hash IN (`+ph+`)`, args...); err != nil {
		return fmt.Errorf("deleting content blobs: %w", err)
	}
	return nil
}

// Templates

func (s *SQLiteDatabase) InsertTemplate(t *model.Template) error {
	if _, err := s.db.ExecContext(context.Background(),
		`INSERT INTO templates (id, title, content) VALUES (?, ?, ?)`,
		t.ID, t.Title, t.Content); err != nil {
		return fmt.Errorf("creating template: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) GetTemplate(id string) (*model.Template, error) {
	var t model.Template
	err := s.db.QueryRowContext(context.Background(),
		`SELECT id, title, content FROM templates WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &t.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding template: %w", err)
	}
	return &t, nil
}

func (s *SQLiteDatabase) ListTemplates() ([]model.Template, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, title, content FROM templates ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Title, &t.Content); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *SQLiteDatabase) DeleteTemplate(id string) error {
	if _, err := s.db.ExecContext(context.Background(),
		`DELETE FROM templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return nil
}

// ImportWorkspace writes a legacy bulk import in one transaction. The
// empty-store guard runs inside the transaction so a concurrent
// populate cannot slip between check and write.
func (s *SQLiteDatabase) ImportWorkspace(nodes []model.Node, blobs []model.ContentBlob, versions []model.Version, now time.Time) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		return fmt.Errorf("counting nodes: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("store is not empty (%d nodes)", count)
	}

	for i := range blobs {
		if err := ensureBlob(ctx, tx, &blobs[i], now); err != nil {
			return err
		}
	}
	for i := range nodes {
		if err := insertNode(ctx, tx, &nodes[i]); err != nil {
			return err
		}
	}
	for i := range versions {
		if err := insertVersion(ctx, tx, &versions[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp brings the database schema to the latest version.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Transaction helpers shared by the write methods.

func insertNode(ctx context.Context, tx *sql.Tx, node *model.Node) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (id, kind, title, parent_id, sibling_order, created_at, updated_at, current_content_hash, doc_type, language_hint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.ID,
		string(node.Kind),
		node.Title,
		toNullString(node.ParentID),
		node.SiblingOrder,
		node.CreatedAt,
		node.UpdatedAt,
		toNullString(node.CurrentContentHash),
		toNullString(node.DocType),
		toNullString(node.LanguageHint),
	)
	if err != nil {
		return fmt.Errorf("inserting node %s: %w", node.ID, err)
	}
	return nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, version *model.Version) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO versions (id, document_id, content_hash, created_at) VALUES (?, ?, ?, ?)`,
		version.ID, version.DocumentID, version.ContentHash, version.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting version: %w", err)
	}
	return nil
}

// ensureBlob creates the content blob row if no row exists for its
// hash. Existing rows are left untouched: content is immutable and
// stored exactly once per hash. now stamps rows whose CreatedAt the
// caller left unset, so blob timestamps follow the engine's clock.
func ensureBlob(ctx context.Context, tx *sql.Tx, blob *model.ContentBlob, now time.Time) error {
	var exists int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM content_blobs WHERE hash = ?`, blob.Hash).Scan(&exists)
	if err == nil {
		return nil // already stored
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for existing content: %w", err)
	}

	createdAt := blob.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO content_blobs (hash, byte_length, data, created_at) VALUES (?, ?, ?, ?)`,
		blob.Hash, blob.ByteLength, blob.Data, createdAt); err != nil {
		return fmt.Errorf("inserting content blob: %w", err)
	}
	return nil
}

func placeholders(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(values)), ","), args
}

// Compile-time check that SQLiteDatabase implements engine.Database
var _ engine.Database = (*SQLiteDatabase)(nil)
