package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/platform"
)

func TestPath(t *testing.T) {
	d := &Daemon{
		Name:    "sv2-tp",
		Primary: "bitcoind",
		Suffix:  "-sv2",
		Host:    &platform.Host{Bin: "/opt/bin"},
	}
	want := filepath.Join("/opt/bin", "bitcoind-sv2")
	if got := d.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestPathFallsBackToName(t *testing.T) {
	d := &Daemon{Name: "demand-cli", Host: &platform.Host{Bin: "/opt/bin"}}
	want := filepath.Join("/opt/bin", "demand-cli")
	if got := d.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestResolveMemoizes(t *testing.T) {
	calls := 0
	d := &Daemon{
		ResolveF: func(d *Daemon) (*feed.Selection, error) {
			calls++
			return &feed.Selection{Version: "0.1.17", Standard: true, Source: feed.SourceFeed}, nil
		},
	}
	for i := 0; i < 3; i++ {
		sel, err := d.Resolve()
		if err != nil || sel.Version != "0.1.17" {
			t.Fatalf("Resolve() = %+v, %v", sel, err)
		}
	}
	if calls != 1 {
		t.Errorf("resolver ran %d times, want 1", calls)
	}
}

func TestResolveKeepsWarning(t *testing.T) {
	warn := errors.New("feed down")
	d := &Daemon{
		ResolveF: func(d *Daemon) (*feed.Selection, error) {
			return &feed.Selection{Version: feed.DefaultVersion, Source: feed.SourceDefault}, warn
		},
	}
	sel, err := d.Resolve()
	if sel == nil || !errors.Is(err, warn) {
		t.Fatalf("Resolve() = %+v, %v", sel, err)
	}
	// Memoized call keeps reporting the warning.
	if _, err = d.Resolve(); !errors.Is(err, warn) {
		t.Errorf("memoized warning lost: %v", err)
	}
}

func TestEnsureSkipsExisting(t *testing.T) {
	bin := t.TempDir()
	if err := os.WriteFile(filepath.Join(bin, "bitcoind-sv2"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	d := &Daemon{
		Name:    "sv2-tp",
		Primary: "bitcoind",
		Suffix:  "-sv2",
		Host:    &platform.Host{Bin: bin},
		// No resolver: Ensure must not need one when nothing is to do.
	}
	if err := d.Ensure(false); err != nil {
		t.Errorf("Ensure(false) = %v, want nil", err)
	}
}

func TestEnsureUpToDate(t *testing.T) {
	bin := t.TempDir()
	if err := os.WriteFile(filepath.Join(bin, "bitcoind-sv2"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	d := &Daemon{
		Name:    "sv2-tp",
		Primary: "bitcoind",
		Suffix:  "-sv2",
		Host:    &platform.Host{Bin: bin},
		ResolveF: func(d *Daemon) (*feed.Selection, error) {
			return &feed.Selection{Version: "0.1.17", Standard: true, Source: feed.SourceFeed}, nil
		},
		VersionLocalF: func(d *Daemon) (string, error) {
			return "0.1.17", nil
		},
	}
	if err := d.Ensure(true); err != nil {
		t.Errorf("Ensure(true) = %v, want nil for current install", err)
	}
}

func TestEnsurePinnedCurrent(t *testing.T) {
	bin := t.TempDir()
	if err := os.WriteFile(filepath.Join(bin, "bitcoind-sv2"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	d := &Daemon{
		Name:    "sv2-tp",
		Primary: "bitcoind",
		Suffix:  "-sv2",
		Pin:     "0.1.15",
		Host:    &platform.Host{Bin: bin},
		ResolveF: func(d *Daemon) (*feed.Selection, error) {
			return &feed.Selection{Version: "0.1.17", Standard: true, Source: feed.SourceFeed}, nil
		},
		VersionLocalF: func(d *Daemon) (string, error) {
			return "0.1.15", nil
		},
	}
	if err := d.Ensure(true); err != nil {
		t.Errorf("Ensure(true) = %v, want nil for pinned current install", err)
	}
}

func TestLocal(t *testing.T) {
	bin := t.TempDir()
	file := filepath.Join(bin, "bitcoind-sv2")
	if err := os.WriteFile(file, []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	d := &Daemon{
		Name:    "sv2-tp",
		Primary: "bitcoind",
		Suffix:  "-sv2",
		Variant: feed.IPC,
		Pin:     "0.1.16",
		Host:    &platform.Host{Bin: bin},
		ResolveF: func(d *Daemon) (*feed.Selection, error) {
			return &feed.Selection{Version: "0.1.17", Standard: true, IPC: true, Source: feed.SourceFeed}, nil
		},
		VersionLocalF: func(d *Daemon) (string, error) {
			return "0.1.16", nil
		},
	}

	l := d.Local(true)
	if l.Name != "sv2-tp" || l.File != file || l.Version != "0.1.16" {
		t.Errorf("Local = %+v", l)
	}
	if l.Latest != "0.1.17" || l.Source != "feed" {
		t.Errorf("Latest/Source = %q/%q", l.Latest, l.Source)
	}
	if l.Variant != "ipc" || l.Enforced != "0.1.16" {
		t.Errorf("Variant/Enforced = %q/%q", l.Variant, l.Enforced)
	}
}

func TestLocalMissingFile(t *testing.T) {
	d := &Daemon{
		Name:    "sv2-tp",
		Primary: "bitcoind",
		Suffix:  "-sv2",
		Host:    &platform.Host{Bin: t.TempDir()},
	}
	l := d.Local(false)
	if l.File != "" {
		t.Errorf("File = %q, want empty for missing install", l.File)
	}
	if l.Latest != "" {
		t.Errorf("Latest = %q, want empty without remote", l.Latest)
	}
}

func TestGithubLatestNoRepo(t *testing.T) {
	d := &Daemon{Name: "demand-cli"}
	if _, err := GithubLatest(d); err == nil {
		t.Error("expected error without repo")
	}
}
