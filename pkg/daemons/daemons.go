// Package daemons carries the shared wiring every daemon preset takes.
package daemons

import (
	"context"

	pretty "github.com/jedib0t/go-pretty/v6/progress"

	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/platform"
)

type DaemonOptions struct {
	Context context.Context
	Host    *platform.Host
	Feed    *feed.Client
	Tracker *pretty.Tracker

	// Repo overrides the preset's release repository.
	Repo string
	// Version pins the daemon to one version.
	Version string
	// Variant preselects the build flavor where one exists.
	Variant feed.Variant
}
