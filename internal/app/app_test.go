package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen_Demo(t *testing.T) {
	env, err := Open(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.toml"), Demo: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	if env.SQLite != nil {
		t.Fatal("demo mode should not open a database")
	}
	res := env.Source.ListContacts(context.Background())
	if res.Err != nil {
		t.Fatalf("ListContacts: %v", res.Err)
	}
	if len(res.Value) != len(DemoContacts()) {
		t.Fatalf("contacts = %d, want %d", len(res.Value), len(DemoContacts()))
	}
}

func TestOpen_SQLiteFromConfig(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "contacts.db")
	cfgPath := filepath.Join(dir, "config.toml")
	content := "db_path = \"" + dbPath + "\"\ngrace_window = \"50ms\"\nretry_interval = \"1s\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	env, err := Open(Options{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	if env.SQLite == nil {
		t.Fatal("expected a SQLite store")
	}
	if env.Config.GraceWindow != 50*time.Millisecond {
		t.Fatalf("GraceWindow = %v, want 50ms", env.Config.GraceWindow)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created: %v", err)
	}
}

func TestOpen_DBPathOverride(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "override.db")

	env, err := Open(Options{ConfigPath: filepath.Join(dir, "missing.toml"), DBPath: dbPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	if env.Config.DBPath != dbPath {
		t.Fatalf("DBPath = %q, want %q", env.Config.DBPath, dbPath)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("debounce = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Open(Options{ConfigPath: cfgPath, Demo: true}); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}
