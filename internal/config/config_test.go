package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snaplog-go/internal/config"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig("/work/project", "/data/snaplog")

	if cfg.ProjectDir != "/work/project" {
		t.Errorf("ProjectDir = %q", cfg.ProjectDir)
	}
	if cfg.Server.Addr != "127.0.0.1:7411" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q", cfg.Database.Type)
	}
	if cfg.Database.DataDir != filepath.Join("/data/snaplog", "db") {
		t.Errorf("Database.DataDir = %q", cfg.Database.DataDir)
	}
	if cfg.Backups.Type != "filesystem" {
		t.Errorf("Backups.Type = %q", cfg.Backups.Type)
	}
	if cfg.Backups.Root != filepath.Join("/data/snaplog", "backups") {
		t.Errorf("Backups.Root = %q", cfg.Backups.Root)
	}
}

func TestManager_RoundTrip(t *testing.T) {
	t.Parallel()
	m := &config.Manager{}

	cfg := config.NewConfig("/work/project", "/data/snaplog")
	cfg.Backups.Type = "s3"
	cfg.Backups.S3Bucket = "my-backups"
	cfg.Backups.S3Region = "us-west-2"
	cfg.Backups.Passphrase = "secret"

	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.ProjectDir != cfg.ProjectDir {
		t.Errorf("ProjectDir = %q, want %q", got.ProjectDir, cfg.ProjectDir)
	}
	if got.Backups.S3Bucket != "my-backups" || got.Backups.S3Region != "us-west-2" {
		t.Errorf("Backups = %+v", got.Backups)
	}
	if got.Backups.Passphrase != "secret" {
		t.Errorf("Passphrase = %q", got.Backups.Passphrase)
	}
}

func TestManager_ReadInvalid(t *testing.T) {
	t.Parallel()
	m := &config.Manager{}

	_, err := m.Read(strings.NewReader("not [valid toml"))
	if err == nil {
		t.Fatal("expected error for invalid toml")
	}
}

func TestInit(t *testing.T) {
	t.Run("writes a readable config file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "snaplog.toml")
		cfg := config.NewConfig("/work/project", "/data/snaplog")

		if err := config.Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := config.ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.ProjectDir != "/work/project" {
			t.Errorf("ProjectDir = %q", got.ProjectDir)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "snaplog.toml")
		if err := os.WriteFile(path, []byte("project_dir = \"/old\"\n"), 0644); err != nil {
			t.Fatalf("seeding file: %v", err)
		}

		err := config.Init(path, config.NewConfig("/new", "/base"))
		if err == nil {
			t.Fatal("expected error for existing config file")
		}

		got, err := config.ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.ProjectDir != "/old" {
			t.Errorf("existing config was overwritten: %q", got.ProjectDir)
		}
	})
}

func TestReadFromFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := config.ReadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
