package main

import (
	"context"
	"os"

	"github.com/fentas/goodies/streams"

	"github.com/sv2tools/sv2up/pkg/cli"
	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/daemons"
	"github.com/sv2tools/sv2up/pkg/daemons/demandcli"
	"github.com/sv2tools/sv2up/pkg/daemons/sv2tp"
)

// Magic variables set by goreleaser
var (
	version           = "v0.3.0" // x-release-please-version
	versionPreRelease = ""
)

func main() {
	o := &daemons.DaemonOptions{
		Context: context.Background(),
	}

	managed := []*daemon.Daemon{
		sv2tp.Daemon(o),
		demandcli.Daemon(o),
	}

	io := &streams.IO{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}

	if err := cli.Execute(managed, io, version, versionPreRelease); err != nil {
		os.Exit(1)
	}
}
