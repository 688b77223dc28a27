package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sv2tools/sv2up/pkg/hostdeps"
	"github.com/sv2tools/sv2up/pkg/platform"
	"github.com/sv2tools/sv2up/test/testutil"
)

// fakeTools builds a PATH holding stub executables for every required
// tool.
func fakeTools(t *testing.T) {
	t.Helper()
	dir := testutil.TempDir(t)
	for _, tool := range hostdeps.Required() {
		if err := os.WriteFile(filepath.Join(dir, tool), []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("writing stub %s: %v", tool, err)
		}
	}
	t.Setenv("PATH", dir)
}

func TestDepsOptions_RunAllPresent(t *testing.T) {
	fakeTools(t)

	io, outBuf, _ := testutil.MockIOWithBuffers()
	shared := NewSharedOptions(io, nil)
	shared.Host = &platform.Host{Os: platform.OsLinux}
	o := &DepsOptions{SharedOptions: shared}

	if err := o.Run(); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}

	out := outBuf.String()
	for _, tool := range hostdeps.Required() {
		if !testutil.Contains(out, "✓ "+tool) {
			t.Errorf("Run() output = %q, want %s marked present", out, tool)
		}
	}
	if testutil.Contains(out, "✗") {
		t.Errorf("Run() output = %q, nothing should be missing", out)
	}
}

func TestDepsOptions_RunMissingShowsHint(t *testing.T) {
	t.Setenv("PATH", testutil.TempDir(t))

	io, outBuf, _ := testutil.MockIOWithBuffers()
	shared := NewSharedOptions(io, nil)
	shared.Host = &platform.Host{Os: platform.OsDarwin}
	o := &DepsOptions{SharedOptions: shared}

	if err := o.Run(); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}

	out := outBuf.String()
	if !testutil.Contains(out, "✗ curl") {
		t.Errorf("Run() output = %q, want curl marked missing", out)
	}
	if !testutil.Contains(out, "brew install") {
		t.Errorf("Run() output = %q, want a brew hint on darwin", out)
	}
}

func TestDepsOptions_RunCheckAllPresent(t *testing.T) {
	fakeTools(t)

	io, outBuf, _ := testutil.MockIOWithBuffers()
	shared := NewSharedOptions(io, nil)
	shared.Host = &platform.Host{Os: platform.OsLinux}
	o := &DepsOptions{SharedOptions: shared, Check: true}

	if err := o.Run(); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	if !testutil.Contains(outBuf.String(), "All required tools are present") {
		t.Errorf("Run() output = %q", outBuf.String())
	}
}

func TestContains(t *testing.T) {
	if !contains([]string{"curl", "tar"}, "tar") {
		t.Error("contains() = false, want true")
	}
	if contains([]string{"curl"}, "tar") {
		t.Error("contains() = true, want false")
	}
	if contains(nil, "tar") {
		t.Error("contains() on nil = true, want false")
	}
}

func TestNewDepsCmd(t *testing.T) {
	shared := NewSharedOptions(testutil.MockIO(), testDaemons())

	cmd := NewDepsCmd(shared)

	if cmd.Use != "deps" {
		t.Errorf("NewDepsCmd() Use = %v, want deps", cmd.Use)
	}
	if cmd.Flags().Lookup("check") == nil {
		t.Error("NewDepsCmd() missing --check flag")
	}
}
