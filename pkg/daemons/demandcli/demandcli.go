// Package demandcli is the preset for the companion proxy client that
// bridges the node to a Stratum V2 pool endpoint.
package demandcli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/daemons"
	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/path"
)

// DefaultRepo is where the proxy client releases are published.
const DefaultRepo = "demand-open-source/demand-cli"

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
		Context: options.Context,
		Host:    options.Host,
		Tracker: options.Tracker,
		Version: options.Version,
		Pin:     options.Version,
		Name:    "demand-cli",
		Repo:    repo,
		Primary: "demand-cli",
		Title:   "DMND pool proxy",
		ServiceArgs: []string{
			"--config", filepath.Join(path.DaemonDir(), "demand-cli.toml"),
		},
		FileF: func(d *daemon.Daemon) (string, error) {
			if d.Host == nil {
				return "", errors.New("host not identified")
			}
			return fmt.Sprintf("demand-cli-%s.tar.gz", d.Host.Triplet()), nil
		},
		ResolveF: func(d *daemon.Daemon) (*feed.Selection, error) {
			tag, err := daemon.GithubLatest(d)
			if err != nil {
				return nil, err
			}
			return &feed.Selection{Version: tag, Standard: true, Source: feed.SourceFeed}, nil
		},
		VersionLocalF: func(d *daemon.Daemon) (string, error) {
			s, err := d.Exec("--version")
			if err != nil {
				return "", err
			}
			return parseVersion(s)
		},
	}
}

// parseVersion extracts the tag from "demand-cli 0.4.2" style output.
func parseVersion(s string) (string, error) {
	fields := strings.Fields(strings.SplitN(s, "\n", 2)[0])
	if len(fields) < 2 {
		return "", fmt.Errorf("unexpected version output %q", s)
	}
	v := fields[len(fields)-1]
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v, nil
}
