package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fentas/goodies/templates"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/conf"
	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/path"
	"github.com/sv2tools/sv2up/pkg/platform"
	"github.com/sv2tools/sv2up/pkg/service"
)

// ServiceOptions holds options for the service command
type ServiceOptions struct {
	*SharedOptions
	Print    bool // render to stdout, touch nothing
	NoEnable bool // write the unit file but do not load it
	Remove   bool // unregister instead

	targets []*daemon.Daemon
}

// NewServiceCmd creates the service subcommand
func NewServiceCmd(shared *SharedOptions) *cobra.Command {
	o := &ServiceOptions{
		SharedOptions: shared,
	}

	cmd := &cobra.Command{
		Use:     "service [daemon...]",
		Aliases: []string{"svc"},
		Short:   "Register daemons with the service manager",
		Long:    "Writes user-level service units (systemd on Linux, launchd on macOS) that keep the daemons running, and enables them.",
		Example: templates.Examples(`
			# Register and start both daemons
			sv2up service

			# Inspect the unit without writing it
			sv2up service sv2-tp --print

			# Write the unit file only
			sv2up service --no-enable

			# Stop and remove the units
			sv2up service --remove
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			return o.Run()
		},
	}

	cmd.Flags().BoolVar(&o.Print, "print", false, "Render the unit definition to stdout without writing it")
	cmd.Flags().BoolVar(&o.NoEnable, "no-enable", false, "Write the unit file but do not enable it")
	cmd.Flags().BoolVar(&o.Remove, "remove", false, "Stop the daemons and remove their units")

	return cmd
}

// Complete sets up the service operation
func (o *ServiceOptions) Complete(args []string) error {
	var err error
	o.targets, err = o.GetDaemons(args)
	return err
}

// Run executes the service operation
func (o *ServiceOptions) Run() error {
	if o.Remove {
		for _, d := range o.targets {
			if err := service.Unregister(o.Host, d.Name); err != nil {
				return err
			}
			if !o.Quiet {
				fmt.Fprintf(o.IO.Out, "Removed %s\n", d.Name)
			}
		}
		return nil
	}

	for _, d := range o.targets {
		unit, err := o.unitFor(d)
		if err != nil {
			return err
		}

		if o.Print {
			content, err := unit.Render(o.Host)
			if err != nil {
				return err
			}
			fmt.Fprint(o.IO.Out, content)
			continue
		}

		if !d.Exists() {
			o.Warnf("%s is not installed; the unit will fail to start until it is", d.Name)
		}
		unitPath, err := service.Register(o.Host, unit, !o.NoEnable)
		if err != nil {
			return err
		}
		if !o.Quiet {
			fmt.Fprintf(o.IO.Out, "Registered %s (%s)\n", d.Name, unitPath)
		}
	}
	return nil
}

// unitFor builds the service unit for one daemon. Secrets reach the
// process through the env file; launchd has no EnvironmentFile, so
// there the values are embedded into the plist.
func (o *ServiceOptions) unitFor(d *daemon.Daemon) (*service.Unit, error) {
	dir := path.DaemonDir()
	envFile := filepath.Join(dir, "sv2.env")

	unit := &service.Unit{
		Name:        d.Name,
		Description: d.Title,
		Program:     d.Path(),
		Args:        d.ServiceArgs,
		WorkDir:     dir,
		EnvFile:     envFile,
	}
	if o.Host != nil && o.Host.Os == platform.OsDarwin {
		env, err := conf.ReadEnv(envFile)
		if err != nil {
			return nil, err
		}
		if len(env) > 0 {
			unit.Env = env
		}
	}
	return unit, nil
}
