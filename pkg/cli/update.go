package cli

import (
	"os"

	"github.com/fentas/goodies/templates"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/feed"
)

// UpdateOptions holds options for the update command
type UpdateOptions struct {
	*InstallOptions
	Check bool // only report, exit 1 when something is outdated
}

// NewUpdateCmd creates the update subcommand
func NewUpdateCmd(shared *SharedOptions) *cobra.Command {
	o := &UpdateOptions{
		InstallOptions: &InstallOptions{SharedOptions: shared},
	}

	cmd := &cobra.Command{
		Use:     "update [daemon...]",
		Aliases: []string{"u"},
		Short:   "Update daemons to their newest release",
		Long:    "Update daemons. If no arguments are given, updates every managed daemon. Pinned versions are left alone.",
		Example: templates.Examples(`
			# Update everything
			sv2up update

			# Update a single daemon
			sv2up update sv2-tp

			# Only check, exit 1 when something is outdated
			sv2up update --check
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
	cmd.Flags().BoolVar(&o.Check, "check", false, "Check for newer releases without installing (exit code based)")

	return cmd
}

// Run executes the update operation
func (o *UpdateOptions) Run() error {
	if o.Check {
		return o.runCheck()
	}

	for _, d := range o.targets {
		if err := o.prepareUpdate(d); err != nil {
			return err
		}
	}
	return o.installDaemons(o.targets, true)
}

// prepareUpdate settles version and variant like install, but an
// already installed daemon is still resolved so Ensure can compare.
func (o *UpdateOptions) prepareUpdate(d *daemon.Daemon) error {
	if o.variant != "" && d.Variants {
		d.Variant = o.variant
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
		return err
	}
	if err != nil {
		o.Warnf("%s: %v (using %s)", d.Name, err, sel.Version)
	}
	d.Version = sel.Version

	if d.Variants && d.Variant == "" {
		variant, err := o.decider(d).Variant(d.Name, sel.Version, sel.Standard, sel.IPC)
		if err != nil {
			return err
		}
		d.Variant = variant
	}
	return nil
}

// runCheck lists daemons that are not at their latest version and exits
// non-zero when any are found.
func (o *UpdateOptions) runCheck() error {
	outdated := make([]*daemon.LocalDaemon, 0)
	for _, d := range o.targets {
		local := d.Local(true)
		if local.Enforced != "" {
			if local.Version != local.Enforced {
				outdated = append(outdated, local)
			}
			continue
		}
		if local.Version == "" || (local.Latest != "" && local.Version != local.Latest) {
			outdated = append(outdated, local)
		}
	}
	if len(outdated) > 0 {
		o.IO.Print(outdated)
		os.Exit(1)
	}
	return nil
}
