// Package daemon manages the lifecycle of one installed daemon: release
// resolution, the download/extract/install pipeline and local version
// inspection.
package daemon

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/path"
)

// Resolve runs the daemon's resolver once and memoizes the outcome. The
// returned error is a soft-failure warning when a selection is still
// usable, and fatal only when the selection is nil.
func (d *Daemon) Resolve() (*feed.Selection, error) {
	if d.selection != nil {
		return d.selection, d.resolveWarn
	}
	if d.ResolveF == nil {
		return nil, errors.New("no resolver configured")
	}
	sel, err := d.ResolveF(d)
	if sel == nil {
		return nil, err
	}
	d.selection, d.resolveWarn = sel, err
	return sel, err
}

// Latest returns the newest resolvable version.
func (d *Daemon) Latest() (string, error) {
	sel, err := d.Resolve()
	if sel == nil {
		return "", err
	}
	return sel.Version, nil
}

// Local describes the daemon as installed on this host. With remote set
// the resolver is consulted for the newest version.
func (d *Daemon) Local(remote bool) *LocalDaemon {
	var latest, source string
	if remote && d.ResolveF != nil {
		if sel, _ := d.Resolve(); sel != nil {
			latest = sel.Version
			source = string(sel.Source)
		}
	}
	var version string
	if d.VersionLocalF != nil {
		version, _ = d.VersionLocalF(d)
	}
	file := d.Path()
	if !d.Exists() {
		file = ""
	}
	return &LocalDaemon{
		Name:     d.Name,
		File:     file,
		Version:  version,
		Latest:   latest,
		Variant:  string(d.Variant),
		Source:   source,
		Enforced: d.Pin,
	}
}

// Path returns where the daemon's primary executable lives (or would
// live) on this host.
func (d *Daemon) Path() string {
	if d.File != "" {
		return d.File
	}
	bin := path.InstallDir()
	if d.Host != nil && d.Host.Bin != "" {
		bin = d.Host.Bin
	}
	name := d.Primary
	if name == "" {
		name = d.Name
	}
	d.File = filepath.Join(bin, name+d.Suffix)
	return d.File
}

// BinDir returns the directory executables are installed into.
func (d *Daemon) BinDir() string {
	return filepath.Dir(d.Path())
}

func (d *Daemon) Exists() bool {
	p := d.Path()
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

// Ensure installs the daemon when missing and, with update set, when
// the installed version is neither pinned nor current.
func (d *Daemon) Ensure(update bool) error {
	if d.Exists() {
		if !update {
			return nil
		}
		local := d.Local(true)
		if local.Version != "" {
			if d.Pin != "" {
				if local.Version == d.Pin {
					return nil
				}
			} else if local.Latest != "" && local.Version == local.Latest {
				return nil
			}
		}
	}

	if d.Version == "" {
		if d.Pin != "" {
			d.Version = d.Pin
		} else {
			sel, err := d.Resolve()
			if sel == nil {
				return err
			}
			d.Version = sel.Version
		}
	}
	res := d.Install()
	if !res.OK() {
		return res.Err
	}
	return nil
}

// Exec runs the installed daemon with args and returns its combined
// output, for local version probing.
func (d *Daemon) Exec(args ...string) (string, error) {
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, d.Path(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}
