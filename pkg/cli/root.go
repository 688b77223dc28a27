package cli

import (
	"fmt"
	"os"

	"github.com/fentas/goodies/output"
	"github.com/fentas/goodies/streams"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/daemon"
)

// NewRootCmd creates the new root command with subcommands
func NewRootCmd(daemons []*daemon.Daemon, io *streams.IO, version, versionPreRelease string) *cobra.Command {
	shared := NewSharedOptions(io, daemons)
	shared.ToolVersion = version

	cmd := &cobra.Command{
		Use:   "sv2up",
		Short: "Manage Stratum V2 mining daemons",
		Long:  "Install, update and wire up the Stratum V2 template provider and the DMND proxy ⛏",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle version flag at root level
			if cmd.Flags().Changed("version") {
				v := version
				if versionPreRelease != "" {
					v = fmt.Sprintf("%s-%s", version, versionPreRelease)
				}
				fmt.Printf("%s", v)
				os.Exit(0)
			}

			return shared.Complete()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// Show help when no subcommand is provided
			_ = cmd.Help()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&shared.ConfigPath, "config", "c", "", "Path to configuration file (default: auto-discover sv2.yaml)")
	cmd.PersistentFlags().BoolVar(&shared.Force, "force", false, "Force operations, overwriting existing daemons")
	cmd.PersistentFlags().BoolVarP(&shared.Quiet, "quiet", "q", false, "Quiet mode")
	cmd.PersistentFlags().BoolVarP(&shared.Yes, "yes", "y", false, "Assume yes, never prompt")
	cmd.PersistentFlags().BoolP("version", "v", false, "Print version information and quit")

	// Add output format flag
	output.AddFlag(cmd, output.OptionJSON(), output.OptionYAML(), output.OptionFormat())

	// Add subcommands
	cmd.AddCommand(NewInstallCmd(shared))
	cmd.AddCommand(NewUpdateCmd(shared))
	cmd.AddCommand(NewStatusCmd(shared))
	cmd.AddCommand(NewResolveCmd(shared))
	cmd.AddCommand(NewConfigureCmd(shared))
	cmd.AddCommand(NewServiceCmd(shared))
	cmd.AddCommand(NewDepsCmd(shared))
	cmd.AddCommand(NewInitCmd(shared))
	cmd.AddCommand(NewVerifyCmd(shared))

	// Set custom usage template to show aliases in command list
	cmd.SetUsageTemplate(getUsageTemplate())

	return cmd
}

// getUsageTemplate returns a custom usage template that shows aliases
func getUsageTemplate() string {
	return `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if .IsAvailableCommand}}
  {{$cmdName := .Name}}{{range .Aliases}}{{$cmdName = printf "%s, %s" $cmdName .}}{{end}}{{rpad $cmdName .NamePadding }}     {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// Execute runs the root command
func Execute(daemons []*daemon.Daemon, io *streams.IO, version, versionPreRelease string) error {
	root := NewRootCmd(daemons, io, version, versionPreRelease)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(io.ErrOut, "Error: %v\n", err)
		return err
	}
	return nil
}
