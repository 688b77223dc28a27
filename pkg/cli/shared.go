package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/fentas/goodies/streams"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/path"
	"github.com/sv2tools/sv2up/pkg/platform"
	"github.com/sv2tools/sv2up/pkg/prompt"
	"github.com/sv2tools/sv2up/pkg/state"
)

// SharedOptions contains common options used across subcommands
type SharedOptions struct {
	IO      *streams.IO
	Daemons []*daemon.Daemon
	Config  *state.Config
	Host    *platform.Host
	Decide  prompt.Decider

	// Tool version, stamped at build time
	ToolVersion string

	// Global flags
	ConfigPath string
	Force      bool
	Quiet      bool
	Yes        bool

	// Internal
	lookup map[string]*daemon.Daemon
}

// NewSharedOptions creates a new SharedOptions with default values
func NewSharedOptions(io *streams.IO, daemons []*daemon.Daemon) *SharedOptions {
	opts := &SharedOptions{
		IO:      io,
		Daemons: daemons,
		lookup:  make(map[string]*daemon.Daemon),
	}
	for _, d := range daemons {
		opts.lookup[d.Name] = d
	}
	return opts
}

// Complete identifies the host, loads sv2.yaml and applies its settings
// to the managed daemons. It runs before every subcommand.
func (o *SharedOptions) Complete() error {
	if o.Quiet {
		o.IO.Out = io.Discard
	}
	if o.Decide == nil {
		if o.Yes {
			o.Decide = &prompt.Static{Yes: true, Warn: o.IO.ErrOut}
		} else {
			o.Decide = &prompt.Terminal{IO: o.IO}
		}
	}

	if o.Host == nil {
		host, err := platform.Current()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedHost, err)
		}
		o.Host = host
	}
	if o.Host.Warning != "" {
		o.Warnf("%s", o.Host.Warning)
		o.Host.Warning = ""
	}
	for _, d := range o.Daemons {
		if d.Host == nil {
			d.Host = o.Host
		}
	}

	cfg, err := state.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	o.Config = cfg
	o.applyConfig()
	return nil
}

// applyConfig copies sv2.yaml settings onto the matching daemons.
func (o *SharedOptions) applyConfig() {
	if o.Config == nil {
		return
	}
	for _, settings := range o.Config.Daemons {
		d, ok := o.lookup[settings.Name]
		if !ok {
			o.Warnf("sv2.yaml names unknown daemon %q", settings.Name)
			continue
		}
		if settings.Version != "" {
			d.Pin = settings.Version
		}
		if settings.Variant != "" {
			if v, err := feed.ParseVariant(settings.Variant); err == nil {
				d.Variant = v
			} else {
				o.Warnf("sv2.yaml: %v", err)
			}
		}
		if settings.Repo != "" {
			d.Repo = settings.Repo
		}
	}
}

// GetDaemon returns a managed daemon by name
func (o *SharedOptions) GetDaemon(name string) (*daemon.Daemon, bool) {
	d, ok := o.lookup[name]
	return d, ok
}

// GetDaemons resolves command arguments to daemons. Without arguments
// every managed daemon is returned.
func (o *SharedOptions) GetDaemons(args []string) ([]*daemon.Daemon, error) {
	if len(args) == 0 {
		return o.Daemons, nil
	}
	var out []*daemon.Daemon
	for _, name := range args {
		d, ok := o.lookup[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDaemon, name)
		}
		out = append(out, d)
	}
	return out, nil
}

// ValidateInstallPath ensures we have a place to install daemons into
func (o *SharedOptions) ValidateInstallPath() error {
	if path.InstallDir() == "" {
		return ErrNoInstallPath
	}
	return nil
}

// ConfigFile returns the sv2.yaml path in use, or the default location
// when none exists yet.
func (o *SharedOptions) ConfigFile() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	if found, err := path.FindConfigFile(""); err == nil && found != "" {
		return found
	}
	return path.DefaultConfigFile()
}

var warnColor = color.New(color.FgYellow)

// Warnf prints a highlighted warning to stderr. Warnings are never
// silenced by --quiet; soft failures must stay visible.
func (o *SharedOptions) Warnf(format string, a ...interface{}) {
	warnColor.Fprintf(o.IO.ErrOut, "! "+format+"\n", a...)
}
