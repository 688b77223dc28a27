package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fentas/goodies/templates"
	"github.com/jedib0t/go-pretty/v6/table"
	jmespath "github.com/jmespath-community/go-jmespath/pkg/api"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/service"
)

// StatusOptions holds options for the status command
type StatusOptions struct {
	*SharedOptions
	Local bool   // only show local state, no release lookup
	Query string // JMESPath filter over the JSON representation
	args  []string
}

// NewStatusCmd creates the status subcommand
func NewStatusCmd(shared *SharedOptions) *cobra.Command {
	o := &StatusOptions{
		SharedOptions: shared,
	}

	cmd := &cobra.Command{
		Use:     "status [daemon...]",
		Aliases: []string{"st", "ls"},
		Short:   "Show daemon versions and service state",
		Long:    "Lists every managed daemon with its installed version, the newest release and its service state.",
		Example: templates.Examples(`
			# Show all daemons
			sv2up status

			# Show one daemon as JSON
			sv2up status sv2-tp --output json

			# Skip the release lookup
			sv2up status --local

			# JMESPath over the JSON representation
			sv2up status --query "[?version != latest].name"
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			return o.Run(cmd)
		},
	}

	cmd.Flags().BoolVar(&o.Local, "local", false, "Only show local state, no lookup for new releases")
	cmd.Flags().StringVar(&o.Query, "query", "", "JMESPath expression to filter the output")

	return cmd
}

// Complete sets up the status operation
func (o *StatusOptions) Complete(args []string) error {
	for _, name := range args {
		if _, ok := o.GetDaemon(name); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDaemon, name)
		}
	}
	o.args = args
	return nil
}

// Run executes the status operation
func (o *StatusOptions) Run(cmd *cobra.Command) error {
	daemons, err := o.GetDaemons(o.args)
	if err != nil {
		return err
	}
	locals := o.lookupLocals(daemons)

	if o.Query != "" {
		return o.printQuery(locals)
	}
	if cmd.Flags().Changed("output") {
		return o.IO.Print(locals)
	}
	o.printTable(locals)
	return nil
}

// lookupLocals gathers local state for the daemons in parallel, keeping
// the argument order.
func (o *StatusOptions) lookupLocals(daemons []*daemon.Daemon) []*daemon.LocalDaemon {
	wg := sync.WaitGroup{}
	locals := make([]*daemon.LocalDaemon, len(daemons))

	for i, d := range daemons {
		wg.Add(1)
		go func(i int, d *daemon.Daemon) {
			defer wg.Done()
			locals[i] = d.Local(!o.Local)
		}(i, d)
	}
	wg.Wait()
	return locals
}

// printQuery applies the JMESPath expression to the JSON form of the
// daemon list and prints the result as JSON.
func (o *StatusOptions) printQuery(locals []*daemon.LocalDaemon) error {
	raw, err := json.Marshal(locals)
	if err != nil {
		return err
	}
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	result, err := jmespath.Search(o.Query, data)
	if err != nil {
		return fmt.Errorf("query %q: %w", o.Query, err)
	}
	enc := json.NewEncoder(o.IO.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// printTable renders the default human-readable status table.
func (o *StatusOptions) printTable(locals []*daemon.LocalDaemon) {
	t := table.NewWriter()
	t.SetOutputMirror(o.IO.Out)
	t.AppendHeader(table.Row{"Daemon", "Installed", "Latest", "Build", "Service", "Status"})

	for _, l := range locals {
		t.AppendRow(table.Row{
			l.Name,
			orDash(l.Version),
			orDash(l.Latest),
			orDash(l.Variant),
			o.serviceState(l.Name),
			statusOf(l),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

// serviceState reports what the service manager knows about a daemon.
// Daemons never registered show a dash; querying the manager is skipped
// when no unit file exists.
func (o *StatusOptions) serviceState(name string) string {
	if o.Host == nil {
		return "-"
	}
	if _, err := os.Stat(service.UnitPath(o.Host, name)); err != nil {
		return "-"
	}
	if service.Active(o.Host, name) {
		return "running"
	}
	return "stopped"
}

// statusOf condenses a local daemon's state into one word.
func statusOf(l *daemon.LocalDaemon) string {
	switch {
	case l.File == "":
		return "missing"
	case l.Enforced != "":
		if l.Version == l.Enforced {
			return "pinned"
		}
		return "pinned (drift)"
	case l.Latest == "" || l.Version == "":
		return "installed"
	case l.Version == l.Latest:
		return "ok"
	default:
		return "outdated"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
