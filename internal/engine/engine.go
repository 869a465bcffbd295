package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"inkwell/internal/model"
)

// Engine is the orchestration layer over the persistent store. It owns
// all tree mutations, the version ledger, and the query surface the
// surrounding application consumes.
//
// All writes funnel through single transactional Database methods, so
// mutations are serialized by the store and each one either fully
// commits or leaves no trace.
type Engine struct {
	db     Database
	blobs  BlobStore // nil when content bytes live in the database
	enc    Encryptor // nil or unconfigured means plaintext blobs
	dec    DecryptionContext
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// New creates an Engine with the provided dependencies. blobs may be
// nil, in which case content bytes are stored in the content_blobs
// relation itself. enc is only consulted when an external blob store is
// configured.
func New(db Database, blobs BlobStore, enc Encryptor, logger Logger, clock Clock, idgen IDGenerator) *Engine {
	return &Engine{
		db:     db,
		blobs:  blobs,
		enc:    enc,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// SetDecryptionContext attaches an unlocked decryption context, enabling
// content reads from an encrypted external blob store.
func (e *Engine) SetDecryptionContext(dec DecryptionContext) {
	e.dec = dec
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// ContentHash returns the store's content address for the given bytes:
// the lowercase hex SHA-256 checksum.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (e *Engine) encryptEnabled() bool {
	return e.enc != nil && e.enc.IsConfigured()
}

// stageContent prepares content for a commit. With an external blob
// store the bytes (encrypted if configured) are written to the store
// up front, Put being idempotent by hash, and the returned blob row
// carries no data. Otherwise the bytes ride along in the row and are
// written inside the commit transaction.
func (e *Engine) stageContent(hash string, content []byte) (*model.ContentBlob, error) {
	blob := &model.ContentBlob{
		Hash:       hash,
		ByteLength: int64(len(content)),
	}

	if e.blobs == nil {
		blob.Data = content
		return blob, nil
	}

	payload := content
	if e.encryptEnabled() {
		var buf bytes.Buffer
		if err := e.enc.Encrypt(bytes.NewReader(content), &buf); err != nil {
			return nil, storageErr("encrypting content", err)
		}
		payload = buf.Bytes()
	}

	if err := e.blobs.Put(hash, bytes.NewReader(payload), int64(len(payload))); err != nil {
		return nil, storageErr("writing content to blob store", err)
	}
	return blob, nil
}

// ReadContent returns the content bytes for a hash, fetching from the
// external blob store and decrypting as needed.
func (e *Engine) ReadContent(hash string) ([]byte, error) {
	blob, err := e.db.GetBlob(hash)
	if err != nil {
		return nil, storageErr("loading content blob", err)
	}
	if blob == nil {
		return nil, &NotFoundError{Kind: "content", ID: hash}
	}
	if blob.Data != nil {
		return blob.Data, nil
	}
	if e.blobs == nil {
		return nil, storageErr("reading content", fmt.Errorf("blob %s has no stored bytes and no blob store is configured", hash))
	}

	var buf bytes.Buffer
	if err := e.blobs.Get(hash, &buf); err != nil {
		return nil, storageErr("reading content from blob store", err)
	}

	if !e.encryptEnabled() {
		return buf.Bytes(), nil
	}
	if e.dec == nil {
		return nil, storageErr("decrypting content", errors.New("blob store is encrypted and no decryption context is unlocked"))
	}

	var plain bytes.Buffer
	if err := e.dec.Decrypt(&buf, &plain); err != nil {
		return nil, storageErr("decrypting content", err)
	}
	return plain.Bytes(), nil
}
