package app

import (
	"fmt"
	"os"
	"time"

	"inkwell/internal/blobstore"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/encryption"
	"inkwell/internal/engine"
	"inkwell/internal/legacy"
	"inkwell/internal/model"
)

// App is the application layer between the CLI and the Engine.
// It constructs all dependencies from config, exposes high-level
// operations that accept raw CLI strings, and manages the DB lifecycle
// on Close.
type App struct {
	cfg       *config.Config
	db        engine.Database
	blobs     engine.BlobStore
	encryptor engine.Encryptor
	engine    *engine.Engine
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Move", "Commit").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	blobs, err := blobstore.NewBlobStoreFromConfig(cfg.BlobStore)
	if err != nil {
		return nil, fmt.Errorf("creating blob store: %w", err)
	}
	if blobs != nil {
		if err := blobs.Validate(); err != nil {
			return nil, fmt.Errorf("validating blob store: %w", err)
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	eng := engine.New(db, blobs, enc, &slogAdapter{l: logger}, engine.RealClock{}, engine.UUIDGenerator{})

	return &App{
		cfg:       cfg,
		db:        db,
		blobs:     blobs,
		encryptor: enc,
		engine:    eng,
		logFile:   logFile,
	}, nil
}

// Engine returns the underlying engine for direct operation calls.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// EncryptionConfigured reports whether an encryptor with generated keys
// is in place. Commands that read externally stored content must call
// Unlock first when this is true.
func (a *App) EncryptionConfigured() bool {
	return a.encryptor != nil && a.encryptor.IsConfigured()
}

// SetupKeys generates the encryption key pair protected by the
// passphrase.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is not enabled in config")
	}
	return a.encryptor.Setup(passphrase)
}

// Unlock decrypts the private key with the passphrase and arms the
// engine for content reads.
func (a *App) Unlock(passphrase string) error {
	if a.encryptor == nil {
		return nil
	}
	dec, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking keys: %w", err)
	}
	a.engine.SetDecryptionContext(dec)
	return nil
}

// ResolveParent maps a raw CLI parent argument to a parent id.
// The empty string means the workspace root.
func ResolveParent(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

// ImportLegacy reads a legacy export at path and bulk-imports it into
// the empty workspace. format is "json", "yaml", "dir", or "auto" to
// pick from the path. Returns the number of folders and documents
// imported.
func (a *App) ImportLegacy(path, format string) (int, int, error) {
	ws, err := a.loadLegacy(path, format)
	if err != nil {
		return 0, 0, err
	}
	if err := a.engine.ImportWorkspace(ws.ToImportSet()); err != nil {
		return 0, 0, err
	}
	return len(ws.Folders), len(ws.Documents), nil
}

func (a *App) loadLegacy(path, format string) (*legacy.Workspace, error) {
	switch format {
	case "json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening legacy export: %w", err)
		}
		defer f.Close()
		return legacy.DecodeJSON(f)
	case "yaml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening legacy export: %w", err)
		}
		defer f.Close()
		return legacy.DecodeYAML(f)
	case "dir":
		return legacy.ScanDir(path)
	case "auto", "":
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading legacy path: %w", err)
		}
		if info.IsDir() {
			return legacy.ScanDir(path)
		}
		return legacy.DecodeFile(path)
	default:
		return nil, fmt.Errorf("unknown legacy format: %q", format)
	}
}

// NodePath returns the titles from the root down to the node, joined
// with "/". Used by the CLI to show where a node lives.
func (a *App) NodePath(id string) (string, error) {
	node, err := a.engine.GetNode(id)
	if err != nil {
		return "", err
	}
	chain, err := a.engine.AncestorChain(id)
	if err != nil {
		return "", err
	}

	path := node.Title
	for _, ancestorID := range chain {
		ancestor, err := a.engine.GetNode(ancestorID)
		if err != nil {
			return "", err
		}
		path = ancestor.Title + "/" + path
	}
	return path, nil
}

// Tree returns the subtree rooted at parentID in depth-first order,
// paired with each node's depth. A nil parentID starts at the
// workspace root (depth 0 children).
func (a *App) Tree(parentID *string) ([]TreeRow, error) {
	var rows []TreeRow
	if err := a.walkTree(parentID, 0, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TreeRow is one line of a tree listing.
type TreeRow struct {
	Node  model.Node
	Depth int
}

func (a *App) walkTree(parentID *string, depth int, rows *[]TreeRow) error {
	children, err := a.engine.Children(parentID)
	if err != nil {
		return err
	}
	for _, child := range children {
		*rows = append(*rows, TreeRow{Node: child, Depth: depth})
		if child.IsFolder() {
			id := child.ID
			if err := a.walkTree(&id, depth+1, rows); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes all resources.
func (a *App) Close() error {
	var firstErr error
	if err := a.engine.Close(); err != nil {
		firstErr = fmt.Errorf("closing engine: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
