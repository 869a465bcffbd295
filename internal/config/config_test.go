package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/inkwell")

	if cfg.BaseDir != "/data/inkwell" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/inkwell")
	}
	if cfg.LogDir != filepath.Join("/data/inkwell", "log") {
		t.Errorf("LogDir = %q, want base log dir", cfg.LogDir)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.BlobStore.Type != "database" {
		t.Errorf("BlobStore.Type = %q, want database", cfg.BlobStore.Type)
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want none", cfg.Encryption.Type)
	}
}

func TestManager_RoundTrip(t *testing.T) {
	m := &Manager{}
	cfg := NewConfig("/data/inkwell")
	cfg.BlobStore = BlobStoreConfig{
		Type:     "s3",
		S3Bucket: "inkwell-content",
		S3Prefix: "workspaces/main",
		S3Region: "eu-central-1",
	}
	cfg.Encryption.Type = "age"

	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != cfg.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, cfg.BaseDir)
	}
	if got.BlobStore != cfg.BlobStore {
		t.Errorf("BlobStore = %+v, want %+v", got.BlobStore, cfg.BlobStore)
	}
	if got.Encryption != cfg.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, cfg.Encryption)
	}
}

func TestManager_Read(t *testing.T) {
	t.Run("parses a minimal config", func(t *testing.T) {
		input := `
base_dir = "/data/inkwell"

[database]
type = "sqlite"
data_dir = "/data/inkwell/db"

[blobstore]
type = "filesystem"
fs_root = "/data/inkwell/content"
`
		m := &Manager{}
		cfg, err := m.Read(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if cfg.Database.DataDir != "/data/inkwell/db" {
			t.Errorf("Database.DataDir = %q, want /data/inkwell/db", cfg.Database.DataDir)
		}
		if cfg.BlobStore.FSRoot != "/data/inkwell/content" {
			t.Errorf("BlobStore.FSRoot = %q, want /data/inkwell/content", cfg.BlobStore.FSRoot)
		}
	})

	t.Run("rejects malformed toml", func(t *testing.T) {
		m := &Manager{}
		if _, err := m.Read(strings.NewReader("this is not = [toml")); err == nil {
			t.Error("Read() parsed malformed input, want error")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates a new config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "inkwell.toml")
		if err := Init(path, NewConfig("/data/inkwell")); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		cfg, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if cfg.BaseDir != "/data/inkwell" {
			t.Errorf("BaseDir = %q, want /data/inkwell", cfg.BaseDir)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "inkwell.toml")
		if err := Init(path, NewConfig("/a")); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := Init(path, NewConfig("/b")); err == nil {
			t.Error("second Init() succeeded, want error")
		}
	})
}
