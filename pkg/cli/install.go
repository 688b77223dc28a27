package cli

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fentas/goodies/progress"
	"github.com/fentas/goodies/templates"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/lock"
	"github.com/sv2tools/sv2up/pkg/path"
	"github.com/sv2tools/sv2up/pkg/prompt"
	"github.com/sv2tools/sv2up/pkg/state"
)

// InstallOptions holds options for the install command
type InstallOptions struct {
	*SharedOptions
	Variant string // requested sv2-tp build, standard or ipc
	Save    bool   // record the daemon in sv2.yaml
	Pin     string // exact version to install and pin

	variant feed.Variant
	targets []*daemon.Daemon
}

// NewInstallCmd creates the install subcommand
func NewInstallCmd(shared *SharedOptions) *cobra.Command {
	o := &InstallOptions{
		SharedOptions: shared,
	}

	cmd := &cobra.Command{
		Use:     "install [daemon...]",
		Aliases: []string{"i"},
		Short:   "Install daemons",
		Long:    "Install daemons. If no arguments are given, installs every managed daemon",
		Example: templates.Examples(`
			# Install the template provider and the proxy
			sv2up install

			# Install a single daemon
			sv2up install sv2-tp

			# Install the multiprocess build
			sv2up install sv2-tp --variant ipc

			# Install an exact version and pin it in sv2.yaml
			sv2up install sv2-tp --pin 0.1.16

			# Force install (overwrite existing)
			sv2up install --force demand-cli
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run()
		},
	}

	cmd.Flags().StringVar(&o.Variant, "variant", "", "Build of sv2-tp to install (standard or ipc)")
	cmd.Flags().BoolVar(&o.Save, "save", false, "Record the daemon in sv2.yaml during install")
	cmd.Flags().StringVar(&o.Pin, "pin", "", "Install this exact version and pin it in sv2.yaml (implies --save)")

	return cmd
}

// Complete sets up the install operation
func (o *InstallOptions) Complete(args []string) error {
	if err := o.ValidateInstallPath(); err != nil {
		return err
	}

	var err error
	o.targets, err = o.GetDaemons(args)
	if err != nil {
		return err
	}

	if o.Variant != "" {
		if o.variant, err = feed.ParseVariant(o.Variant); err != nil {
			return err
		}
	}
	if o.Pin != "" {
		if len(o.targets) != 1 {
			return fmt.Errorf("--pin needs exactly one daemon")
		}
		o.targets[0].Pin = o.Pin
		o.Save = true
	}
	return nil
}

// Validate checks if the install operation is valid
func (o *InstallOptions) Validate() error {
	if o.variant != "" {
		for _, d := range o.targets {
			if d.Variants {
				return nil
			}
		}
		return fmt.Errorf("--variant only applies to daemons with an ipc build")
	}
	return nil
}

// Run executes the install operation
func (o *InstallOptions) Run() error {
	// Settle versions and builds before rendering progress; prompts and
	// progress bars do not share a terminal well.
	for _, d := range o.targets {
		if err := o.prepare(d); err != nil {
			return err
		}
	}

	if err := o.installDaemons(o.targets, false); err != nil {
		return err
	}

	if o.Save {
		return o.saveConfig(o.targets)
	}
	return nil
}

// prepare settles the version and, for daemons that ship one, the build
// variant before the parallel install starts.
func (o *InstallOptions) prepare(d *daemon.Daemon) error {
	if o.variant != "" && d.Variants {
		d.Variant = o.variant
	}

	if d.Exists() && !o.Force {
		return nil
	}

	if d.Pin != "" {
		d.Version = d.Pin
		if d.Variants && d.Variant == "" {
			d.Variant = feed.Standard
		}
		return nil
	}

	sel, err := d.Resolve()
	if sel == nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	if err != nil {
		o.Warnf("%s: %v (using %s)", d.Name, err, sel.Version)
	}
	d.Version = sel.Version

	if d.Variants {
		variant, err := o.decider(d).Variant(d.Name, sel.Version, sel.Standard, sel.IPC)
		if err != nil {
			return err
		}
		d.Variant = variant
	}
	return nil
}

// decider picks who answers the variant question for one daemon. A
// preset choice, --yes or --quiet all mean nobody gets prompted.
func (o *InstallOptions) decider(d *daemon.Daemon) prompt.Decider {
	if d.Variant != "" || o.Yes || o.Quiet {
		return &prompt.Static{Choice: d.Variant, Yes: o.Yes, Warn: o.IO.ErrOut}
	}
	return o.Decide
}

// installDaemons installs the given daemons with progress tracking
func (o *InstallOptions) installDaemons(daemons []*daemon.Daemon, update bool) error {
	wg := sync.WaitGroup{}
	pw := progress.NewWriter(progress.StyleDownload, o.IO.Out)
	pw.Style().Visibility.Percentage = true
	go pw.Render()
	defer pw.Stop()

	verb := "installed"
	if update {
		verb = "updated"
	}

	errs := make([]error, len(daemons))
	for i, d := range daemons {
		wg.Add(1)

		go func(i int, d *daemon.Daemon) {
			defer wg.Done()

			tracker := pw.AddTracker(fmt.Sprintf("Installing %s", d.Name), 0)
			d.Tracker = tracker
			d.Writer = pw

			var err error
			if o.Force {
				res := d.Install()
				err = res.Err
			} else {
				err = d.Ensure(update)
			}
			errs[i] = err

			progress.ProgressDone(
				d.Tracker,
				fmt.Sprintf("%s %s", d.Name, verb),
				err,
			)
		}(i, d)
	}

	wg.Wait()
	// Let the progress bar render
	time.Sleep(200 * time.Millisecond)

	var failed []string
	for i, err := range errs {
		if err == nil {
			o.record(daemons[i])
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %v", daemons[i].Name, err))
	}
	if len(failed) > 0 {
		return errors.New(strings.Join(failed, "; "))
	}
	return nil
}

// record writes a lock entry for a daemon the pipeline just placed.
// Skipped installs leave the lock alone.
func (o *InstallOptions) record(d *daemon.Daemon) {
	if len(d.Installed) == 0 {
		return
	}
	sum, err := lock.SHA256File(d.Path())
	if err != nil {
		o.Warnf("%s: recording checksum: %v", d.Name, err)
		return
	}
	variant := ""
	if d.Variants {
		variant = string(d.Variant)
	}
	tag, err := d.Tag()
	if err != nil {
		tag = d.Version
	}
	entry := lock.Entry{
		Name:        d.Name,
		Tag:         tag,
		Variant:     variant,
		Version:     d.Version,
		SHA256:      sum,
		Path:        d.Path(),
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := lock.Upsert(path.ConfigDir(), entry, o.ToolVersion); err != nil {
		o.Warnf("%s: writing sv2up.lock: %v", d.Name, err)
	}
}

// saveConfig records the installed daemons in sv2.yaml
func (o *InstallOptions) saveConfig(daemons []*daemon.Daemon) error {
	cfg := o.Config
	if cfg == nil {
		cfg = &state.Config{}
		o.Config = cfg
	}

	for _, d := range daemons {
		settings := cfg.Ensure(d.Name)
		if d.Variants && d.Variant != "" {
			settings.Variant = string(d.Variant)
		}
		if o.Pin != "" && d.Pin != "" {
			settings.Version = d.Pin
		}
	}

	file := o.ConfigFile()
	if err := state.Save(cfg, file); err != nil {
		return err
	}
	if !o.Quiet {
		fmt.Fprintf(o.IO.Out, "Recorded in %s\n", file)
	}
	return nil
}
