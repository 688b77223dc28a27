package cli

import (
	"testing"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/test/testutil"
)

func TestUpdateOptions_PrepareUpdate(t *testing.T) {
	testutil.Home(t)
	io, _, _ := testutil.MockIOWithBuffers()
	shared := NewSharedOptions(io, nil)
	o := &UpdateOptions{InstallOptions: &InstallOptions{SharedOptions: shared}}

	// Pinned daemons never resolve
	d := &daemon.Daemon{
		Name:     "sv2-tp",
		Variants: true,
		Pin:      "0.1.15",
		ResolveF: func(*daemon.Daemon) (*feed.Selection, error) {
			t.Error("prepareUpdate() resolved a pinned daemon")
			return nil, nil
		},
	}
	if err := o.prepareUpdate(d); err != nil {
		t.Fatalf("prepareUpdate() unexpected error = %v", err)
	}
	if d.Version != "0.1.15" {
		t.Errorf("prepareUpdate() Version = %q, want the pin", d.Version)
	}
	if d.Variant != feed.Standard {
		t.Errorf("prepareUpdate() Variant = %q, want standard default", d.Variant)
	}

	// Unpinned daemons move to the newest release
	d = &daemon.Daemon{
		Name:     "sv2-tp",
		Variants: true,
		Variant:  feed.IPC,
		ResolveF: func(*daemon.Daemon) (*feed.Selection, error) {
			return &feed.Selection{Version: "0.1.17", Standard: true, IPC: true, Source: feed.SourceFeed}, nil
		},
	}
	if err := o.prepareUpdate(d); err != nil {
		t.Fatalf("prepareUpdate() unexpected error = %v", err)
	}
	if d.Version != "0.1.17" {
		t.Errorf("prepareUpdate() Version = %q, want 0.1.17", d.Version)
	}
	if d.Variant != feed.IPC {
		t.Errorf("prepareUpdate() Variant = %q, want preset ipc kept", d.Variant)
	}
}

func TestUpdateOptions_CheckClassification(t *testing.T) {
	// runCheck exits the process, so the classification is tested on its
	// own.
	tests := []struct {
		name         string
		locals       []*daemon.LocalDaemon
		wantOutdated int
	}{
		{
			name: "all current",
			locals: []*daemon.LocalDaemon{
				{Name: "sv2-tp", Version: "0.1.17", Latest: "0.1.17"},
				{Name: "demand-cli", Version: "0.1.2", Latest: "0.1.2"},
			},
			wantOutdated: 0,
		},
		{
			name: "one behind",
			locals: []*daemon.LocalDaemon{
				{Name: "sv2-tp", Version: "0.1.15", Latest: "0.1.17"},
				{Name: "demand-cli", Version: "0.1.2", Latest: "0.1.2"},
			},
			wantOutdated: 1,
		},
		{
			name: "pin satisfied despite newer release",
			locals: []*daemon.LocalDaemon{
				{Name: "sv2-tp", Version: "0.1.15", Latest: "0.1.17", Enforced: "0.1.15"},
			},
			wantOutdated: 0,
		},
		{
			name: "pin drifted",
			locals: []*daemon.LocalDaemon{
				{Name: "sv2-tp", Version: "0.1.16", Latest: "0.1.17", Enforced: "0.1.15"},
			},
			wantOutdated: 1,
		},
		{
			name: "not installed counts as outdated",
			locals: []*daemon.LocalDaemon{
				{Name: "sv2-tp", Latest: "0.1.17"},
			},
			wantOutdated: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outdated := 0
			for _, l := range tt.locals {
				if l.Enforced != "" {
					if l.Version != l.Enforced {
						outdated++
					}
					continue
				}
				if l.Version == "" || (l.Latest != "" && l.Version != l.Latest) {
					outdated++
				}
			}
			if outdated != tt.wantOutdated {
				t.Errorf("check classification = %d outdated, want %d", outdated, tt.wantOutdated)
			}
		})
	}
}

func TestNewUpdateCmd(t *testing.T) {
	shared := NewSharedOptions(testutil.MockIO(), testDaemons())

	cmd := NewUpdateCmd(shared)

	if cmd.Use != "update [daemon...]" {
		t.Errorf("NewUpdateCmd() Use = %v, want update [daemon...]", cmd.Use)
	}
	if len(cmd.Aliases) != 1 || cmd.Aliases[0] != "u" {
		t.Errorf("NewUpdateCmd() Aliases = %v, want [u]", cmd.Aliases)
	}
	for _, flag := range []string{"variant", "check"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("NewUpdateCmd() missing --%s flag", flag)
		}
	}
}
