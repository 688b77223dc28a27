package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func TestUpsertAndRead(t *testing.T) {
	dir := t.TempDir()

	err := Upsert(dir, Entry{
		Name:        "sv2-tp",
		Tag:         "sv2-tp-ipc-0.1.17",
		Variant:     "ipc",
		Version:     "0.1.17",
		SHA256:      "abc123",
		Path:        "/home/miner/.local/bin/bitcoind-sv2",
		InstalledAt: "2026-08-23T10:00:00Z",
	}, "v1.0.0")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	lk, err := Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if lk.Version != 1 {
		t.Errorf("version = %d, want 1", lk.Version)
	}
	if lk.Tool.Sv2up != "v1.0.0" {
		t.Errorf("tool = %q, want v1.0.0", lk.Tool.Sv2up)
	}
	if lk.Updated == "" {
		t.Error("updated timestamp missing")
	}
	if len(lk.Daemons) != 1 {
		t.Fatalf("got %d daemons, want 1", len(lk.Daemons))
	}
	e := lk.Daemons[0]
	if e.Name != "sv2-tp" || e.Variant != "ipc" || e.SHA256 != "abc123" {
		t.Errorf("entry = %+v", e)
	}
	if e.Tag != "sv2-tp-ipc-0.1.17" || e.Version != "0.1.17" {
		t.Errorf("tag/version = %q/%q", e.Tag, e.Version)
	}
}

func TestReadMissing(t *testing.T) {
	lk, err := Read(t.TempDir())
	if err != nil {
		t.Fatalf("Read on missing file: %v", err)
	}
	if lk.Version != 1 {
		t.Errorf("version = %d, want 1", lk.Version)
	}
	if len(lk.Daemons) != 0 {
		t.Errorf("got %d daemons, want 0", len(lk.Daemons))
	}
}

func TestReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sv2up.lock"), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(dir); err == nil {
		t.Error("expected error for corrupt lockfile")
	}
}

func TestUpsertReplacesAndAppends(t *testing.T) {
	dir := t.TempDir()

	if err := Upsert(dir, Entry{Name: "sv2-tp", Version: "0.1.16", SHA256: "old"}, "v1"); err != nil {
		t.Fatal(err)
	}
	if err := Upsert(dir, Entry{Name: "sv2-tp", Version: "0.1.17", SHA256: "new"}, "v1"); err != nil {
		t.Fatal(err)
	}
	if err := Upsert(dir, Entry{Name: "demand-cli", Version: "v0.4.2", SHA256: "cli"}, "v1"); err != nil {
		t.Fatal(err)
	}

	lk, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(lk.Daemons) != 2 {
		t.Fatalf("got %d daemons, want 2", len(lk.Daemons))
	}
	if lk.Daemons[0].Name != "sv2-tp" || lk.Daemons[0].SHA256 != "new" {
		t.Errorf("first entry = %+v", lk.Daemons[0])
	}
	if lk.Daemons[1].Name != "demand-cli" {
		t.Errorf("second entry = %+v", lk.Daemons[1])
	}
}

// TestUpsertPreservesUnknownFields seeds a lockfile with fields this
// version knows nothing about; updating an entry must keep them.
func TestUpsertPreservesUnknownFields(t *testing.T) {
	dir := t.TempDir()
	seed := `{
  "version": 1,
  "future": {"x": 1},
  "daemons": [
    {"name": "sv2-tp", "version": "0.1.16", "sha256": "old", "custom": "keep"}
  ]
}`
	if err := os.WriteFile(filepath.Join(dir, "sv2up.lock"), []byte(seed), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Upsert(dir, Entry{Name: "sv2-tp", Version: "0.1.17", SHA256: "new"}, "v1"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sv2up.lock"))
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, "future.x").Int(); got != 1 {
		t.Errorf("top-level unknown field lost, future.x = %d", got)
	}
	if got := gjson.GetBytes(data, "daemons.0.custom").String(); got != "keep" {
		t.Errorf("entry unknown field lost, custom = %q", got)
	}
	if got := gjson.GetBytes(data, "daemons.0.version").String(); got != "0.1.17" {
		t.Errorf("version not updated, got %q", got)
	}
}

func TestFind(t *testing.T) {
	lk := &Lock{
		Daemons: []Entry{
			{Name: "sv2-tp"},
			{Name: "demand-cli"},
		},
	}
	if e := lk.Find("sv2-tp"); e == nil {
		t.Error("expected to find sv2-tp")
	}
	if e := lk.Find("missing"); e != nil {
		t.Error("expected nil for missing daemon")
	}
}

func TestSHA256File(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	if err := os.WriteFile(p, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := SHA256File(p)
	if err != nil {
		t.Fatalf("SHA256File: %v", err)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Errorf("SHA256File() = %q, want %q", got, want)
	}
}

func TestSHA256FileMissing(t *testing.T) {
	if _, err := SHA256File(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing file")
	}
}
