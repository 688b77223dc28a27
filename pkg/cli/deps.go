package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fentas/goodies/templates"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/hostdeps"
)

// DepsOptions holds options for the deps command
type DepsOptions struct {
	*SharedOptions
	Check bool
}

// NewDepsCmd creates the deps subcommand
func NewDepsCmd(shared *SharedOptions) *cobra.Command {
	o := &DepsOptions{
		SharedOptions: shared,
	}

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check host tools the daemons rely on",
		Long:  "Verifies that the host provides the tools needed to download and unpack releases, and suggests how to install the missing ones.",
		Example: templates.Examples(`
			# Show what is missing and how to get it
			sv2up deps

			# Install missing tools via the system package manager
			sv2up deps --yes

			# Exit non-zero when something is missing (for scripts)
			sv2up deps --check
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run()
		},
	}

	cmd.Flags().BoolVar(&o.Check, "check", false, "Only report, exit 1 when a tool is missing")

	return cmd
}

// Run executes the deps operation
func (o *DepsOptions) Run() error {
	missing := hostdeps.Missing()

	if o.Check {
		if len(missing) > 0 {
			fmt.Fprintf(o.IO.ErrOut, "missing: %s\n", strings.Join(missing, ", "))
			os.Exit(1)
		}
		if !o.Quiet {
			fmt.Fprintln(o.IO.Out, "All required tools are present")
		}
		return nil
	}

	for _, tool := range hostdeps.Required() {
		mark := "✓"
		if contains(missing, tool) {
			mark = "✗"
		}
		fmt.Fprintf(o.IO.Out, "  %s %s\n", mark, tool)
	}

	if len(missing) == 0 {
		return nil
	}

	family := hostdeps.Detect(o.Host.Os)
	if o.Yes {
		return hostdeps.Install(family, missing, o.IO.Out, o.IO.ErrOut)
	}
	fmt.Fprintf(o.IO.Out, "\n%s\n", hostdeps.Hint(family, missing))
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
