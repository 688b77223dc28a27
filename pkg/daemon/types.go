package daemon

import (
	"context"

	pwrap "github.com/fentas/goodies/progress"
	pretty "github.com/jedib0t/go-pretty/v6/progress"

	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/platform"
)

type IsDaemon interface {
	Ensure(bool) error
	Local(bool) *LocalDaemon
}

type Callback func(*Daemon) (string, error)

// ResolveFunc resolves the newest installable release of a daemon.
type ResolveFunc func(*Daemon) (*feed.Selection, error)

type Daemon struct {
	Context context.Context `json:"-"`
	Name    string          `json:"name"`
	Repo    string          `json:"repo"`

	// resolution
	Version       string       `json:"-"` // effective version or tag
	Pin           string       `json:"-"` // version enforced by config
	Variant       feed.Variant `json:"-"`
	Variants      bool         `json:"-"` // publishes an ipc flavor alongside standard
	ResolveF      ResolveFunc  `json:"-"`
	VersionLocalF Callback     `json:"-"`

	// artifact
	TagF  Callback `json:"-"`
	FileF Callback `json:"-"`
	URLF  Callback `json:"-"`

	// install
	Host    *platform.Host `json:"-"`
	Primary string         `json:"-"` // executable the daemon is known by
	Suffix  string         `json:"-"` // appended to every installed name
	File    string         `json:"-"`

	// service
	Title       string   `json:"-"` // one-line description for service units
	ServiceArgs []string `json:"-"` // args the service manager starts the daemon with

	// Installed lists the files the last successful install placed.
	Installed []string `json:"-"`

	Tracker *pretty.Tracker `json:"-"`
	Writer  *pwrap.Writer   `json:"-"`

	selection   *feed.Selection
	resolveWarn error
}

type LocalDaemon struct {
	Name     string `json:"name"`
	File     string `json:"file,omitempty"`
	Version  string `json:"version,omitempty"`
	Latest   string `json:"latest"`
	Variant  string `json:"variant,omitempty"`
	Source   string `json:"source,omitempty"`
	Enforced string `json:"enforced,omitempty"`
}
