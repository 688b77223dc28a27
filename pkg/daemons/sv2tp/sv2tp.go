// Package sv2tp is the preset for the Stratum V2 Template Provider
// node build.
package sv2tp

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/daemons"
	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/lock"
	"github.com/sv2tools/sv2up/pkg/path"
)

func Daemon(options *daemons.DaemonOptions) *daemon.Daemon {
	if options == nil {
		options = &daemons.DaemonOptions{
			Context: context.Background(),
		}
	}
	repo := options.Repo
	if repo == "" {
		repo = DefaultRepo
	}
	return &daemon.Daemon{
		Context:  options.Context,
		Host:     options.Host,
		Tracker:  options.Tracker,
		Version:  options.Version,
		Pin:      options.Version,
		Variant:  options.Variant,
		Variants: true,
		Name:     "sv2-tp",
		Repo:     repo,
		Primary:  "bitcoind",
		Suffix:   "-sv2",
		Title:    "Stratum V2 template provider (bitcoind)",
		ServiceArgs: []string{
			"-conf=" + filepath.Join(path.DaemonDir(), "bitcoin.conf"),
		},
		TagF: func(d *daemon.Daemon) (string, error) {
			return feed.TagName(d.Version, d.Variant), nil
		},
		FileF: func(d *daemon.Daemon) (string, error) {
			if d.Host == nil {
				return "", errors.New("host not identified")
			}
			return ArtifactFile(d.Version, d.Variant, d.Host), nil
		},
		ResolveF: func(d *daemon.Daemon) (*feed.Selection, error) {
			c := options.Feed
			if c == nil {
				c = feed.NewClient()
			}
			ctx := d.Context
			if ctx == nil {
				ctx = context.Background()
			}
			return c.Resolve(ctx, d.Repo)
		},
		// The node executable reports the upstream Core version, not the
		// release tag it was built from, so the install receipt is the
		// source of truth for what is on disk.
		VersionLocalF: func(d *daemon.Daemon) (string, error) {
			lk, err := lock.Read(path.ConfigDir())
			if err != nil {
				return "", err
			}
			if e := lk.Find(d.Name); e != nil {
				return e.Version, nil
			}
			return "", nil
		},
	}
}
